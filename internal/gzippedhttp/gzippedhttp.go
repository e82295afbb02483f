// Package gzippedhttp transparently decompresses gzip-encoded request bodies
// and compresses response bodies for clients that accept gzip.
package gzippedhttp

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

var gzipWriterPool = sync.Pool{
	New: func() interface{} {
		w, _ := gzip.NewWriterLevel(nil, gzip.BestSpeed)
		return w
	},
}

type gzipReader struct {
	body io.ReadCloser
	zr   *gzip.Reader
}

func newGzipReader(requestBody io.ReadCloser) (*gzipReader, error) {
	zr, err := gzip.NewReader(requestBody)
	if err != nil {
		return nil, err
	}

	return &gzipReader{
		body: requestBody,
		zr:   zr,
	}, nil
}

func (r gzipReader) Read(p []byte) (n int, err error) {
	return r.zr.Read(p)
}

func (r *gzipReader) Close() error {
	if err := r.body.Close(); err != nil {
		return err
	}
	return r.zr.Close()
}

type gzipResponseWriter struct {
	w  http.ResponseWriter
	zw *gzip.Writer
}

func newGzipResponseWriter(w http.ResponseWriter) *gzipResponseWriter {
	zw := gzipWriterPool.Get().(*gzip.Writer)
	zw.Reset(w)

	return &gzipResponseWriter{
		w:  w,
		zw: zw,
	}
}

func (w *gzipResponseWriter) Header() http.Header {
	return w.w.Header()
}

func (w *gzipResponseWriter) Write(p []byte) (int, error) {
	return w.zw.Write(p)
}

func (w *gzipResponseWriter) WriteHeader(statusCode int) {
	if statusCode < 300 {
		w.w.Header().Set("Content-Encoding", "gzip")
	}
	w.w.WriteHeader(statusCode)
}

func (w *gzipResponseWriter) Close() error {
	err := w.zw.Close()
	if err != nil {
		return err
	}
	gzipWriterPool.Put(w.zw)

	return nil
}

// UngzipRequest replaces a gzip-encoded request body with a decompressing
// reader before the request reaches the next handler.
func UngzipRequest(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		if strings.Contains(request.Header.Get("Content-Encoding"), "gzip") {
			decompressedBody, err := newGzipReader(request.Body)
			if err != nil {
				response.WriteHeader(http.StatusInternalServerError)
				return
			}
			request.Body = decompressedBody
			defer decompressedBody.Close()
		}

		h.ServeHTTP(response, request)
	}

	return http.HandlerFunc(middleware)
}

// GzipResponse compresses the response body when the client accepts gzip.
func GzipResponse(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		finalResponse := response

		if strings.Contains(request.Header.Get("Accept-Encoding"), "gzip") {
			compressedResponse := newGzipResponseWriter(response)
			finalResponse = compressedResponse
			defer compressedResponse.Close()
		}

		h.ServeHTTP(finalResponse, request)
	}

	return http.HandlerFunc(middleware)
}
