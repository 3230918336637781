// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/accountd/accountd/internal/api"
)

func (env *testEnv) call(method, path, token string, body any) (*http.Response, []byte) {
	GinkgoHelper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())
	}

	req, err := http.NewRequestWithContext(env.ctx, method, env.server.URL+path, bytes.NewReader(payload))
	Expect(err).NotTo(HaveOccurred())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := env.server.Client().Do(req)
	Expect(err).NotTo(HaveOccurred())
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	Expect(err).NotTo(HaveOccurred())
	return resp, buf.Bytes()
}

func (env *testEnv) registerAndLogin(name, email, password string) (api.UserResponse, api.LoginResponse) {
	GinkgoHelper()

	resp, body := env.call(http.MethodPost, "/api/v1/users", "", api.RegisterRequest{Name: name, Email: email, Password: password})
	Expect(resp.StatusCode).To(Equal(http.StatusCreated), string(body))
	var u api.UserResponse
	Expect(json.Unmarshal(body, &u)).To(Succeed())

	resp, body = env.call(http.MethodPost, "/api/v1/auth/login", "", api.LoginRequest{Email: email, Password: password})
	Expect(resp.StatusCode).To(Equal(http.StatusOK), string(body))
	var login api.LoginResponse
	Expect(json.Unmarshal(body, &login)).To(Succeed())

	return u, login
}

var _ = Describe("Account lifecycle", Ordered, func() {
	var env *testEnv

	BeforeAll(func() {
		var err error
		env, err = setupTestEnv(time.Hour)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterAll(func() {
		if env != nil {
			env.cleanup()
		}
	})

	It("registers, logs in, inspects and revokes a session", func() {
		u, login := env.registerAndLogin("Alice", "alice@example.com", "secret-pass")
		Expect(login.UserID).To(Equal(u.ID))
		Expect(login.ExpiresIn).To(Equal(int64(3600)))

		stored, err := env.redis.Get(env.ctx, login.AccessToken).Result()
		Expect(err).NotTo(HaveOccurred())
		Expect(stored).To(Equal(u.ID), "redis maps the raw token to the user id")

		resp, body := env.call(http.MethodGet, "/api/v1/auth/session", login.AccessToken, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		var sess api.SessionResponse
		Expect(json.Unmarshal(body, &sess)).To(Succeed())
		Expect(sess.UserID).To(Equal(u.ID))
		Expect(sess.ExpiresIn).To(BeNumerically("~", 3600, 2))

		resp, _ = env.call(http.MethodPost, "/api/v1/auth/logout", login.AccessToken, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusNoContent))

		resp, _ = env.call(http.MethodGet, "/api/v1/auth/session", login.AccessToken, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))

		resp, _ = env.call(http.MethodPost, "/api/v1/auth/logout", login.AccessToken, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
	})

	It("keeps concurrent sessions of one user independent", func() {
		_, first := env.registerAndLogin("Bob", "bob@example.com", "pw-bob")

		resp, body := env.call(http.MethodPost, "/api/v1/auth/login", "", api.LoginRequest{Email: "bob@example.com", Password: "pw-bob"})
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		var second api.LoginResponse
		Expect(json.Unmarshal(body, &second)).To(Succeed())
		Expect(second.AccessToken).NotTo(Equal(first.AccessToken))

		resp, _ = env.call(http.MethodPost, "/api/v1/auth/logout", first.AccessToken, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusNoContent))

		resp, _ = env.call(http.MethodGet, "/api/v1/auth/session", second.AccessToken, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
	})

	It("rejects a duplicate email with 409", func() {
		resp, _ := env.call(http.MethodPost, "/api/v1/users", "", api.RegisterRequest{Name: "Alice Again", Email: "alice@example.com", Password: "x"})
		Expect(resp.StatusCode).To(Equal(http.StatusConflict))
	})

	It("rejects a wrong password and an unknown email alike", func() {
		wrong, wrongBody := env.call(http.MethodPost, "/api/v1/auth/login", "", api.LoginRequest{Email: "alice@example.com", Password: "nope"})
		unknown, unknownBody := env.call(http.MethodPost, "/api/v1/auth/login", "", api.LoginRequest{Email: "nobody@example.com", Password: "nope"})

		Expect(wrong.StatusCode).To(Equal(http.StatusUnauthorized))
		Expect(unknown.StatusCode).To(Equal(http.StatusUnauthorized))
		Expect(wrongBody).To(Equal(unknownBody))
	})

	It("lists users in creation order and deletes them", func() {
		resp, body := env.call(http.MethodGet, "/api/v1/users", "", nil)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		var list api.UserListResponse
		Expect(json.Unmarshal(body, &list)).To(Succeed())
		Expect(len(list.Items)).To(BeNumerically(">=", 2))
		Expect(list.Items[0].Email).To(Equal("alice@example.com"))

		resp, _ = env.call(http.MethodDelete, "/api/v1/users/"+list.Items[0].ID, "", nil)
		Expect(resp.StatusCode).To(Equal(http.StatusNoContent))

		resp, _ = env.call(http.MethodDelete, "/api/v1/users/"+list.Items[0].ID, "", nil)
		Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
	})

	It("reports database health", func() {
		resp, _ := env.call(http.MethodGet, "/api/v1/health/db", "", nil)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
	})
})

var _ = Describe("Token expiry", Ordered, func() {
	var env *testEnv

	BeforeAll(func() {
		var err error
		env, err = setupTestEnv(2 * time.Second)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterAll(func() {
		if env != nil {
			env.cleanup()
		}
	})

	It("stops resolving a token once its TTL elapses", func() {
		_, login := env.registerAndLogin("Carol", "carol@example.com", "pw-carol")
		Expect(login.ExpiresIn).To(Equal(int64(2)))

		resp, _ := env.call(http.MethodGet, "/api/v1/auth/session", login.AccessToken, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		Eventually(func() int {
			resp, _ := env.call(http.MethodGet, "/api/v1/auth/session", login.AccessToken, nil)
			return resp.StatusCode
		}).WithTimeout(10 * time.Second).WithPolling(250 * time.Millisecond).Should(Equal(http.StatusUnauthorized))

		resp, _ = env.call(http.MethodPost, "/api/v1/auth/logout", login.AccessToken, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized), "revoking an expired token is unauthorized")
	})
})
