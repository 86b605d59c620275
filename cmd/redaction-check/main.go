// Package main implements a manual check for the redaction rules applied
// to log output. It feeds representative upstream errors through the
// redact package and prints each raw and redacted pair so the patterns
// can be reviewed by eye before a release.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/phrazzld/eralens-api/internal/platform/logger"
	"github.com/phrazzld/eralens-api/internal/redact"
)

// sampleErrors mirrors the failure shapes seen on the generation path:
// upstream API rejections, transport failures, and filesystem problems.
var sampleErrors = []error{
	errors.New("genai: request failed: api key AIzaSyB1234567890abcdefg is not authorized"),
	errors.New("dial tcp: lookup generativelanguage.googleapis.com:443: no such host"),
	errors.New("read /var/lib/eralens/uploads/photo.png: permission denied"),
	errors.New("password=hunter2 rejected by upstream"),
	errors.New("goroutine 42 [running]:\nmain.dispatch(0xc000122000)\n\t/home/dev/eralens/main.go:52 +0x1a4"),
}

func main() {
	l := logger.New(os.Stdout, "debug")
	slog.SetDefault(l)

	fmt.Println("Redaction check: raw error vs. redacted form")
	fmt.Println()

	for i, err := range sampleErrors {
		fmt.Printf("%d. raw:      %q\n", i+1, err.Error())
		fmt.Printf("   redacted: %q\n", redact.Error(err))
		fmt.Println()

		// Emit through the JSON logger as well, the way handlers log failures
		l.Error("sample failure as it would be logged",
			"index", i+1,
			"error", redact.Error(err))
	}
}
