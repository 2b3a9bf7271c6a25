package tests

import (
	"net/http"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/tutor"
)

func Test_tutorApi_ask(t *testing.T) {
	db.Reset()

	tests := []httpTest{
		{
			name: "missing prompt", body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"prompt": "this field is required"}),
		},
		{
			name: "markup-only prompt", body: []byte(`{"prompt": "<script>alert(1)</script>"}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "question required"}),
		},
		{
			name: "reply", body: []byte(`{"prompt": "What is a fraction?"}`), wantCode: http.StatusOK,
			extra:    "A fraction represents a part of a whole. Here is a similar solved example: ...",
			wantData: marchallObj(t, map[string]string{"reply": "A fraction represents a part of a whole. Here is a similar solved example: ..."}),
		},
		{
			name: "empty generation falls back", body: []byte(`{"prompt": "What is a fraction?"}`), wantCode: http.StatusOK,
			wantData: marchallObj(t, map[string]string{"reply": tutor.FallbackReply}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, _ := tt.extra.(string)
			tutorGen.set(reply, nil)

			// no authentication required
			req, rec := newRequest(http.MethodPost, "/ask", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("prompt is wrapped in the tutoring instructions", func(t *testing.T) {
		tutorGen.set("ok", nil)
		req, rec := newRequest(http.MethodPost, "/ask", []byte(`{"prompt": "<b>What</b> is 2+2?"}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		prompt := tutorGen.prompt()
		if !strings.Contains(prompt, "Do NOT provide direct answers") {
			t.Errorf("prompt misses the tutoring instructions; prompt = %s", prompt)
		}
		if !strings.HasSuffix(prompt, "Question: What is 2+2?") {
			t.Errorf("prompt = %s; want it to end with the cleaned question", prompt)
		}
		if strings.Contains(prompt, "<b>") {
			t.Errorf("markup leaked into the prompt; prompt = %s", prompt)
		}
	})

	t.Run("generation failure is a server error", func(t *testing.T) {
		tutorGen.set("", errors.New("boom"))
		req, rec := newRequest(http.MethodPost, "/ask", []byte(`{"prompt": "hi"}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusInternalServerError)
		}
	})
}
