package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nkaumov/kurs-zakat/internal/transport/middleware"
	"github.com/nkaumov/kurs-zakat/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestMiddleware(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Middleware Suite")
}

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

var _ = Describe("RequestID", func() {
	It("should keep a caller supplied trace id", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middleware.TraceHeader, "abc-123")
		w := httptest.NewRecorder()

		middleware.RequestID(ok).ServeHTTP(w, req)

		Expect(w.Header().Get(middleware.TraceHeader)).To(Equal("abc-123"))
	})

	It("should generate one when missing", func() {
		w := httptest.NewRecorder()
		middleware.RequestID(ok).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(w.Header().Get(middleware.TraceHeader)).To(HaveLen(36))
	})
})

var _ = Describe("RecoveryMiddleware", func() {
	It("should turn a panic into a 500", func() {
		boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
		w := httptest.NewRecorder()

		middleware.RecoveryMiddleware(logger.Discard())(boom).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Body.String()).NotTo(ContainSubstring("boom"))
	})
})

var _ = Describe("RateLimiter", func() {
	It("should throttle a single client after the burst", func() {
		handler := middleware.NewRateLimiter(2).Middleware(ok)

		codes := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
			req.RemoteAddr = "10.0.0.1:5000"
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			codes = append(codes, w.Code)
		}
		Expect(codes).To(Equal([]int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}))

		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "10.0.0.2:5000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusOK))
	})
})

var _ = Describe("LoggingMiddleware", func() {
	It("should pass the request body through untouched", func() {
		var seen string
		echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.ParseForm()).To(Succeed())
			seen = r.PostForm.Get("password")
		})
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("username=chef&password=secret"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		middleware.LoggingMiddleware(logger.Discard())(echo).ServeHTTP(httptest.NewRecorder(), req)

		Expect(seen).To(Equal("secret"))
	})
})
