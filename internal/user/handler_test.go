package user_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/nkaumov/kurs-zakat/internal"
	"github.com/nkaumov/kurs-zakat/internal/database"
	"github.com/nkaumov/kurs-zakat/internal/transport"
	"github.com/nkaumov/kurs-zakat/internal/user"
	userPostgres "github.com/nkaumov/kurs-zakat/internal/user/postgres"
	"github.com/nkaumov/kurs-zakat/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("User Handler", func() {
	var (
		handler *user.Handler
		manager *internal.Identity
	)

	BeforeEach(func() {
		db, err := database.OpenInMemory()
		Expect(err).NotTo(HaveOccurred())
		service := user.NewService(userPostgres.NewUserRepository(db), prefixHasher{}, logger.Discard())
		handler = user.NewHandler(transport.NewBaseHandler(logger.Discard(), transport.MustNewRenderer()), service)
		manager = &internal.Identity{UserID: 1, Username: "manager", Role: internal.RoleManager}
	})

	asManager := func(r *http.Request) *http.Request {
		return r.WithContext(internal.ContextWithIdentity(r.Context(), manager))
	}

	It("should render the form with existing accounts", func() {
		req := asManager(httptest.NewRequest(http.MethodGet, "/manager/create-user", nil))
		w := httptest.NewRecorder()

		handler.CreateUserPage(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`name="username"`))
	})

	It("should create an account from the form", func() {
		form := url.Values{"username": {"newchef"}, "password": {"secret"}, "role": {"chef"}}
		req := asManager(httptest.NewRequest(http.MethodPost, "/manager/create-user", strings.NewReader(form.Encode())))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()

		handler.CreateUser(w, req)

		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(w.Body.String()).To(ContainSubstring("User newchef (chef) created."))
	})

	It("should re-render the form with a conflict for a taken username", func() {
		_, err := handler.Service.Create(context.Background(), user.CreateUserDTO{Username: "taken", Password: "secret", Role: "chef"})
		Expect(err).NotTo(HaveOccurred())

		form := url.Values{"username": {"taken"}, "password": {"secret"}, "role": {"manager"}}
		req := asManager(httptest.NewRequest(http.MethodPost, "/manager/create-user", strings.NewReader(form.Encode())))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()

		handler.CreateUser(w, req)

		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(w.Body.String()).To(ContainSubstring("Registration failed"))
	})

	It("should accept JSON", func() {
		req := asManager(httptest.NewRequest(http.MethodPost, "/manager/create-user",
			strings.NewReader(`{"username":"jsonchef","password":"secret","role":"chef"}`)))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		handler.CreateUser(w, req)

		Expect(w.Code).To(Equal(http.StatusCreated))
		var resp user.UserResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Username).To(Equal("jsonchef"))
		Expect(resp.Role).To(Equal("chef"))
	})
})
