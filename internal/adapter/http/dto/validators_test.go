package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- SanitizeStruct tests ---

func TestSanitizeStruct_TrimsWhitespace(t *testing.T) {
	req := RegisterRequest{
		Name:     "  Alice  ",
		Email:    "alice@example.com",
		Password: "  pass1234  ",
		Role:     "merchant",
	}
	SanitizeStruct(&req)

	assert.Equal(t, "Alice", req.Name)
	assert.Equal(t, "pass1234", req.Password)
}

func TestSanitizeStruct_EscapesHTML(t *testing.T) {
	reason := "customer <script>alert('x')</script> request"
	req := RefundRequest{
		Reason: reason,
	}
	SanitizeStruct(&req)

	assert.Contains(t, req.Reason, "&lt;script&gt;")
	assert.NotContains(t, req.Reason, "<script>")
}

func TestSanitizeStruct_HandlesPointerString(t *testing.T) {
	url := "  https://example.com/webhook  "
	req := CreateMerchantRequest{
		BusinessName:  "Bob Shop",
		BusinessEmail: "bob@example.com",
		Website:       &url,
	}
	SanitizeStruct(&req)

	assert.Equal(t, "https://example.com/webhook", *req.Website)
}

func TestSanitizeStruct_NilPointerIsNoOp(t *testing.T) {
	req := CreateMerchantRequest{
		BusinessName:  "Carol Shop",
		BusinessEmail: "carol@example.com",
		Website:       nil,
	}
	SanitizeStruct(&req)
	assert.Nil(t, req.Website)
}

func TestSanitizeStruct_NonPointerIsNoOp(t *testing.T) {
	s := "hello"
	SanitizeStruct(s) // should not panic
}

// --- Custom Validator tests ---

func TestSafeID_Valid(t *testing.T) {
	cases := []string{
		"ref-001",
		"REF_002",
		"a.b.c",
		"simple123",
		"ABC-def_GHI.123",
	}
	for _, tc := range cases {
		assert.True(t, safeStringRe.MatchString(tc), "expected valid: %s", tc)
	}
}

func TestSafeID_Invalid(t *testing.T) {
	cases := []string{
		"ref 001",     // space
		"ref<001>",    // angle brackets
		"ref;DROP",    // semicolon
		"",            // empty
		"hello world", // space
		"ref\n001",    // newline
	}
	for _, tc := range cases {
		assert.False(t, safeStringRe.MatchString(tc), "expected invalid: %s", tc)
	}
}

func TestSanitizeStruct_CreateOrderRequest(t *testing.T) {
	notes := "  some notes <b>bold</b>  "
	req := CreateOrderRequest{
		Receipt: "  receipt-001  ",
		Currency: " INR",
		Notes:   &notes,
	}
	SanitizeStruct(&req)

	assert.Equal(t, "receipt-001", req.Receipt)
	assert.Equal(t, "INR", req.Currency)
	assert.Equal(t, "some notes &lt;b&gt;bold&lt;/b&gt;", *req.Notes)
}
