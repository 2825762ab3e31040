// Package configsrc resolves the config directory the server reads
// tuning.yaml and blocks.json from. Remote sources are fetched with
// go-getter.
package configsrc

import (
	"context"
	"fmt"
	"os"
	"strings"

	getter "github.com/hashicorp/go-getter"
)

// IsRemote reports whether src needs fetching: a forced getter ("git::...")
// or a URL with a scheme.
func IsRemote(src string) bool {
	return strings.Contains(src, "::") || strings.Contains(src, "://")
}

// Fetch returns a local directory holding src. Local paths are returned as-is;
// remote sources are downloaded into dst, which is replaced.
func Fetch(ctx context.Context, src, dst string) (string, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return "", fmt.Errorf("configsrc: empty source")
	}
	if !IsRemote(src) {
		st, err := os.Stat(src)
		if err != nil {
			return "", err
		}
		if !st.IsDir() {
			return "", fmt.Errorf("configsrc: %s is not a directory", src)
		}
		return src, nil
	}
	if dst == "" {
		return "", fmt.Errorf("configsrc: remote source %q needs a destination", src)
	}
	if err := os.RemoveAll(dst); err != nil {
		return "", err
	}
	pwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	c := &getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Pwd:  pwd,
		Mode: getter.ClientModeDir,
	}
	if err := c.Get(); err != nil {
		return "", fmt.Errorf("configsrc: fetch %s: %w", src, err)
	}
	return dst, nil
}
