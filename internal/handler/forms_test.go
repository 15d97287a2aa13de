// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-school/internal/form"
	"github.com/olegiv/ocms-school/internal/submission"
	"github.com/olegiv/ocms-school/internal/validate"
)

func validContact() map[string]string {
	return map[string]string{
		"name":    "Ada <b>Lovelace</b>",
		"email":   "ada@example.com",
		"message": "When is the next open day?",
	}
}

func TestShowForm(t *testing.T) {
	e := newTestEnv(t)

	status, body := e.do(t, http.MethodGet, "/forms/contact", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "contact", obj(t, body["form"])["name"])
	assert.Equal(t, string(submission.StateIdle), obj(t, body["submission"])["state"])

	status, _ = e.do(t, http.MethodGet, "/forms/article", nil)
	assert.Equal(t, http.StatusNotFound, status, "admin form is not public")
}

func TestSubmitForm_Success(t *testing.T) {
	e := newTestEnv(t)

	status, body := e.do(t, http.MethodPost, "/forms/contact", validContact())
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, form.Contact.SuccessMessage, body["message"])

	require.Equal(t, 1, e.transport.calls())
	payload := e.transport.last()
	assert.Equal(t, "Ada Lovelace", payload["name"], "markup is stripped before delivery")
	assert.Equal(t, "ada@example.com", payload["email"])
	assert.NotContains(t, payload, "phone", "empty optional fields are omitted")

	snap := obj(t, body["submission"])
	assert.Equal(t, string(submission.StateSuccess), snap["state"])
	assert.Equal(t, "", obj(t, snap["values"])["name"], "draft is reset after success")
}

func TestSubmitForm_ValidationErrors(t *testing.T) {
	e := newTestEnv(t)

	status, body := e.do(t, http.MethodPost, "/forms/contact", map[string]string{
		"name":    "Ada",
		"email":   "not-an-email",
		"message": "short",
	})
	require.Equal(t, http.StatusUnprocessableEntity, status)
	errs := obj(t, body["errors"])
	assert.Equal(t, validate.MsgInvalidEmail, errs["email"])
	assert.Contains(t, errs["message"], "at least 10 characters")
	assert.Equal(t, "email", obj(t, body["submission"])["focus_field"])
	assert.Equal(t, 0, e.transport.calls())

	// The draft keeps the entered values for correction.
	_, body = e.do(t, http.MethodGet, "/forms/contact", nil)
	assert.Equal(t, "Ada", obj(t, obj(t, body["submission"])["values"])["name"])
}

func TestSubmitForm_TransportFailure(t *testing.T) {
	e := newTestEnv(t)
	e.transport.set(submission.Result{}, errors.New("connection refused"))

	status, body := e.do(t, http.MethodPost, "/forms/contact", validContact())
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, submission.DefaultFailureMessage, body["error"])

	// The values survive so the visitor can retry.
	_, body = e.do(t, http.MethodGet, "/forms/contact", nil)
	snap := obj(t, body["submission"])
	assert.Equal(t, string(submission.StateError), snap["state"])
	assert.Equal(t, "ada@example.com", obj(t, snap["values"])["email"])

	e.transport.set(submission.Result{OK: true}, nil)
	status, _ = e.do(t, http.MethodPost, "/forms/contact", map[string]string{})
	assert.Equal(t, http.StatusOK, status, "retry replaces the error message and resubmits the kept draft")
	assert.Equal(t, 2, e.transport.calls())
}

func TestSubmitForm_Rejected(t *testing.T) {
	e := newTestEnv(t)
	e.transport.set(submission.Result{OK: false, Message: "Duplicate enquiry"}, nil)

	status, body := e.do(t, http.MethodPost, "/forms/contact", validContact())
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "Duplicate enquiry", body["error"])
}

func TestSubmitForm_Honeypot(t *testing.T) {
	e := newTestEnv(t)
	values := validContact()
	values[honeypotField] = "http://spam.example"

	status, body := e.do(t, http.MethodPost, "/forms/contact", values)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, 0, e.transport.calls())
}

func TestSubmitForm_URLEncoded(t *testing.T) {
	e := newTestEnv(t)

	status, body := e.postForm(t, "/forms/newsletter", url.Values{"email": {"parent@example.com"}})
	require.Equal(t, http.StatusOK, status, "body: %v", body)
	assert.Equal(t, "parent@example.com", e.transport.last()["email"])
}

func TestSubmitForm_UnknownForm(t *testing.T) {
	e := newTestEnv(t)
	status, _ := e.do(t, http.MethodPost, "/forms/unknown", validContact())
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSubmitForm_RateLimited(t *testing.T) {
	e := newTestEnv(t, withFormRate(1))

	status, _ := e.do(t, http.MethodPost, "/forms/newsletter", map[string]string{"email": "a@example.com"})
	require.Equal(t, http.StatusOK, status)
	status, _ = e.do(t, http.MethodPost, "/forms/newsletter", map[string]string{"email": "b@example.com"})
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, 1, e.transport.calls())
}

func TestBlurField(t *testing.T) {
	e := newTestEnv(t)

	status, body := e.do(t, http.MethodPost, "/forms/admission/fields/email", map[string]string{"value": "nope"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, validate.MsgInvalidEmail, body["error"])

	_, body = e.do(t, http.MethodPost, "/forms/admission/fields/email", map[string]string{"value": " ok@example.com "})
	assert.Equal(t, "", body["error"])
	assert.Equal(t, "ok@example.com", body["value"])

	status, _ = e.do(t, http.MethodPost, "/forms/admission/fields/nickname", map[string]string{"value": "x"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDismissForm(t *testing.T) {
	e := newTestEnv(t)
	e.transport.set(submission.Result{}, errors.New("boom"))
	e.do(t, http.MethodPost, "/forms/newsletter", map[string]string{"email": "a@example.com"})

	status, body := e.do(t, http.MethodPost, "/forms/newsletter/dismiss", nil)
	require.Equal(t, http.StatusOK, status)
	snap := obj(t, body["submission"])
	assert.Equal(t, string(submission.StateIdle), snap["state"])
	assert.Nil(t, snap["message"])
}

func TestForms_VisitorsAreIsolated(t *testing.T) {
	e := newTestEnv(t)
	other := newClient(t)

	e.do(t, http.MethodPost, "/forms/contact/fields/name", map[string]string{"value": "Ada"})

	_, body := e.doAs(t, other, http.MethodGet, "/forms/contact", nil)
	assert.Equal(t, "", obj(t, obj(t, body["submission"])["values"])["name"])

	_, body = e.do(t, http.MethodGet, "/forms/contact", nil)
	assert.Equal(t, "Ada", obj(t, obj(t, body["submission"])["values"])["name"])
}
