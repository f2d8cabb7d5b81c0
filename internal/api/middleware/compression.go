package middleware

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"

	"bibliovault/internal/config"
	"bibliovault/internal/models"

	"github.com/gin-gonic/gin"
)

// Content types that are already compressed
var incompressibleTypes = []string{
	"image/",
	"video/",
	"audio/",
	"font/woff",
	"application/zip",
	"application/gzip",
}

// CompressionConfig holds configuration for the compression middleware
type CompressionConfig struct {
	// Minimum content length to trigger compression
	MinLength int
	// Gzip compression level, gzip.DefaultCompression for the library default
	Level int
}

// DefaultCompressionConfig returns the default compression configuration
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinLength: 1024,
		Level:     gzip.DefaultCompression,
	}
}

// NewCompressionConfig builds the middleware settings from application config
func NewCompressionConfig(cfg config.CompressionConfig) CompressionConfig {
	return CompressionConfig{
		MinLength: cfg.MinLength,
		Level:     cfg.Level,
	}
}

func compressible(contentType string) bool {
	for _, prefix := range incompressibleTypes {
		if strings.HasPrefix(contentType, prefix) {
			return false
		}
	}
	return true
}

// errBodyTooLarge is returned when an inflated request body exceeds the limit
var errBodyTooLarge = errors.New("inflated request body too large")

// Compression returns a middleware that gzips large responses
func Compression(cfg CompressionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodHead ||
			!strings.Contains(c.Request.Header.Get("Accept-Encoding"), "gzip") {
			c.Next()
			return
		}

		bw := &bufferedGzipWriter{
			ResponseWriter: c.Writer,
			cfg:            cfg,
		}
		c.Writer = bw
		c.Writer.Header().Add("Vary", "Accept-Encoding")

		c.Next()

		c.Writer = bw.ResponseWriter
		if err := bw.flushBuffer(); err != nil {
			_ = c.Error(err)
		}
	}
}

// DecompressBody returns a middleware that decodes gzip request bodies.
// maxBytes caps the body both as received and once inflated.
// Only attach it to routes that read the request body.
func DecompressBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Header.Get("Content-Encoding") != "gzip" {
			c.Next()
			return
		}

		if err := inflateBody(c.Writer, c.Request, maxBytes); err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) || errors.Is(err, errBodyTooLarge) {
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{Error: "request body too large"})
				return
			}
			c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid gzip request body"})
			return
		}

		c.Next()
	}
}

// inflateBody replaces a gzip request body with its decoded content
func inflateBody(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	reader, err := gzip.NewReader(http.MaxBytesReader(w, r.Body, maxBytes))
	if err != nil {
		return err
	}
	defer reader.Close()

	body, err := io.ReadAll(io.LimitReader(reader, maxBytes+1))
	if err != nil {
		return err
	}
	if int64(len(body)) > maxBytes {
		return errBodyTooLarge
	}

	r.Body = io.NopCloser(bytes.NewReader(body))
	r.Header.Del("Content-Encoding")
	r.ContentLength = int64(len(body))
	return nil
}

// bufferedGzipWriter holds the whole body so the size threshold can be applied
type bufferedGzipWriter struct {
	gin.ResponseWriter
	cfg CompressionConfig
	buf bytes.Buffer
}

func (w *bufferedGzipWriter) Write(data []byte) (int, error) {
	return w.buf.Write(data)
}

func (w *bufferedGzipWriter) WriteString(s string) (int, error) {
	return w.buf.WriteString(s)
}

func (w *bufferedGzipWriter) flushBuffer() error {
	content := w.buf.Bytes()
	status := w.ResponseWriter.Status()

	if len(content) < w.cfg.MinLength ||
		status == http.StatusNoContent || status == http.StatusNotModified ||
		w.Header().Get("Content-Encoding") != "" ||
		!compressible(w.Header().Get("Content-Type")) {
		if len(content) == 0 {
			w.ResponseWriter.WriteHeaderNow()
			return nil
		}
		_, err := w.ResponseWriter.Write(content)
		return err
	}

	gz, err := gzip.NewWriterLevel(w.ResponseWriter, w.cfg.Level)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Encoding", "gzip")
	w.Header().Del("Content-Length")

	if _, err := gz.Write(content); err != nil {
		gz.Close()
		return err
	}
	return gz.Close()
}

// Flush is a no-op until the handler returns; the body is sent in one piece.
func (w *bufferedGzipWriter) Flush() {}

func (w *bufferedGzipWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.ResponseWriter.Hijack()
}

func (w *bufferedGzipWriter) Size() int {
	return w.buf.Len()
}

func (w *bufferedGzipWriter) Written() bool {
	return w.ResponseWriter.Written() || w.buf.Len() > 0
}
