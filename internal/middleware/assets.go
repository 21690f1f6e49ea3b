package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// StaticOptions controls caching of a static directory.
type StaticOptions struct {
	// MaxAge is the Cache-Control max-age; zero means "no-cache" (always revalidate).
	MaxAge time.Duration
	// ETags hashes every file at startup. Leave it off for directories that change while the
	// server runs; http.FileServer still answers with Last-Modified.
	ETags bool
}

// AssetsWithCache serves dir under prefix with Cache-Control, Vary and ETag handling.
func AssetsWithCache(prefix, dir string, opts StaticOptions) http.Handler {
	prefix = strings.TrimRight(prefix, "/")
	etags := map[string]string{}
	if opts.ETags {
		etags = walkETags(dir)
	}

	cacheControl := "no-cache"
	if opts.MaxAge > 0 {
		cacheControl = "public, max-age=" + strconv.Itoa(int(opts.MaxAge.Seconds())) + ", stale-while-revalidate=86400"
	}
	files := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Accept-Encoding")
		w.Header().Set("Cache-Control", cacheControl)
		if et := etags[strings.TrimPrefix(r.URL.Path, prefix)]; et != "" {
			w.Header().Set("ETag", et)
			if inm := r.Header.Get("If-None-Match"); inm != "" && inm == et {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
		files.ServeHTTP(w, r)
	})
}

func walkETags(dir string) map[string]string {
	etags := map[string]string{}
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		et, err := fileETag(path)
		if err != nil {
			return nil
		}
		if rel, err := filepath.Rel(dir, path); err == nil {
			etags["/"+filepath.ToSlash(rel)] = et
		}
		return nil
	})
	return etags
}

func fileETag(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return `W/"` + hex.EncodeToString(h.Sum(nil)[:16]) + `"`, nil
}
