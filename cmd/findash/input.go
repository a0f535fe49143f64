package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	fetchclient "github.com/GregMSThompson/findash-backend/internal/client/fetch"
	"github.com/GregMSThompson/findash-backend/pkg/logger"
)

// readSource loads a payload from an http(s) URL, a file path, or stdin ("-").
func readSource(ctx context.Context, opts *rootOptions, stdin io.Reader, src string) ([]byte, error) {
	switch {
	case src == "-":
		return io.ReadAll(stdin)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		log := logger.New(opts.logLevel, logger.NewTextHandler)
		ctx = logger.ToContext(ctx, log)
		return fetchclient.New(opts.timeout).Get(ctx, src)
	default:
		return os.ReadFile(src)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
