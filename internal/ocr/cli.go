package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strconv"
)

// CLIRecognizer pipes PNG page images through the tesseract binary.
type CLIRecognizer struct {
	binary string
}

// NewCLI returns a recognizer that runs tesseract from PATH.
func NewCLI() *CLIRecognizer {
	return &CLIRecognizer{binary: "tesseract"}
}

func (c *CLIRecognizer) Name() string { return EngineCLI }

// Probe checks that tesseract is on PATH and runs.
func (c *CLIRecognizer) Probe() error {
	path, err := exec.LookPath(c.binary)
	if err != nil {
		return fmt.Errorf("%s not found: install tesseract-ocr: %w", c.binary, err)
	}
	if err := exec.Command(path, "--version").Run(); err != nil {
		return fmt.Errorf("%s --version: %w", c.binary, err)
	}
	return nil
}

// Recognize feeds img to tesseract on stdin and reads the text from stdout.
func (c *CLIRecognizer) Recognize(ctx context.Context, img image.Image, opts Options) (string, error) {
	opts = opts.WithDefaults()
	var in bytes.Buffer
	if err := png.Encode(&in, img); err != nil {
		return "", fmt.Errorf("encode page image: %w", err)
	}
	cmd := exec.CommandContext(ctx, c.binary, args(opts)...)
	cmd.Stdin = &in
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("tesseract: %w: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}
	return out.String(), nil
}

func args(opts Options) []string {
	return []string{
		"stdin", "stdout",
		"-l", opts.language(),
		"--psm", strconv.Itoa(opts.PageSegMode),
		"--dpi", strconv.Itoa(opts.DPI),
		"-c", "tessedit_char_whitelist=" + opts.CharWhitelist,
	}
}
