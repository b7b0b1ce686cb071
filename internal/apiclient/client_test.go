package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visa-advisory-portal/internal/apiclient"
	"visa-advisory-portal/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{"error": map[string]any{"code": code, "message": message, "status": status}})
}

func loggedInClient(t *testing.T, srv *httptest.Server) *apiclient.Client {
	t.Helper()
	session := apiclient.NewSession(apiclient.NewMemoryStore(), nil)
	require.NoError(t, session.Start(apiclient.Credentials{AccessToken: "access-1", RefreshToken: "refresh-1"}, false))
	return apiclient.New(srv.URL+"/api/v1", session)
}

func TestLoginStoresTokenInChosenScope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/login", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "right-password" {
			writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
			return
		}
		writeJSON(w, http.StatusOK, model.TokensPair{AccessToken: "access-1", RefreshToken: "refresh-1", TokenType: "bearer", Role: model.RoleCustomer})
	}))
	defer srv.Close()

	t.Run("session scope by default", func(t *testing.T) {
		memory := apiclient.NewMemoryStore()
		file := apiclient.NewFileStore(filepath.Join(t.TempDir(), "credentials.json"))
		client := apiclient.New(srv.URL+"/api/v1", apiclient.NewSession(memory, file))

		_, err := client.Login(context.Background(), "ana@example.com", "right-password", false)
		require.NoError(t, err)

		inMemory, err := memory.Load()
		require.NoError(t, err)
		require.NotNil(t, inMemory)
		assert.Equal(t, "access-1", inMemory.AccessToken)

		onDisk, err := file.Load()
		require.NoError(t, err)
		assert.Nil(t, onDisk)
	})

	t.Run("persistent scope when remembered", func(t *testing.T) {
		memory := apiclient.NewMemoryStore()
		path := filepath.Join(t.TempDir(), "credentials.json")
		client := apiclient.New(srv.URL+"/api/v1", apiclient.NewSession(memory, apiclient.NewFileStore(path)))

		_, err := client.Login(context.Background(), "ana@example.com", "right-password", true)
		require.NoError(t, err)

		inMemory, err := memory.Load()
		require.NoError(t, err)
		assert.Nil(t, inMemory)

		restored := apiclient.NewSession(apiclient.NewMemoryStore(), apiclient.NewFileStore(path))
		assert.Equal(t, "access-1", restored.Token())
	})

	t.Run("bad credentials", func(t *testing.T) {
		client := apiclient.New(srv.URL+"/api/v1", nil)

		_, err := client.Login(context.Background(), "ana@example.com", "wrong", false)

		var apiErr *apiclient.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "INVALID_CREDENTIALS", apiErr.Code)
		assert.ErrorIs(t, err, apiclient.ErrUnauthorized)
		assert.Empty(t, client.Session().Token())
	})
}

func TestCallsWithoutTokenNeverHitTheNetwork(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits++ }))
	defer srv.Close()

	client := apiclient.New(srv.URL, nil)
	_, err := client.Documents(context.Background())

	assert.ErrorIs(t, err, apiclient.ErrUnauthorized)
	assert.Zero(t, hits)
}

func TestBearerHeaderAndDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/api/v1/categories":
			writeJSON(w, http.StatusOK, []string{"PASAPORTE", "DNI"})
		case "/api/v1/documents":
			writeJSON(w, http.StatusOK, []model.Document{{ID: "d1", Category: "PASAPORTE", Status: model.DocumentPending}})
		default:
			writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
		}
	}))
	defer srv.Close()

	client := loggedInClient(t, srv)

	categories, err := client.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"PASAPORTE", "DNI"}, categories)

	documents, err := client.Documents(context.Background())
	require.NoError(t, err)
	require.Len(t, documents, 1)
	assert.Equal(t, model.DocumentPending, documents[0].Status)
}

func TestUploadDocumentMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "true", r.URL.Query().Get("replace"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "PASAPORTE", r.FormValue("category"))
		assert.Equal(t, "Luis", r.FormValue("family_member_name"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		content, _ := io.ReadAll(file)
		assert.Equal(t, "passport.pdf", header.Filename)
		assert.Equal(t, "application/pdf", header.Header.Get("Content-Type"))
		assert.Equal(t, "%PDF-1.4", string(content))

		writeJSON(w, http.StatusCreated, model.Document{ID: "srv-1", Category: "PASAPORTE", Status: model.DocumentPending})
	}))
	defer srv.Close()

	document, err := loggedInClient(t, srv).UploadDocument(context.Background(), apiclient.UploadRequest{
		Category:         "PASAPORTE",
		FamilyMemberName: "Luis",
		FileName:         "passport.pdf",
		MimeType:         "application/pdf",
		Content:          []byte("%PDF-1.4"),
		Replace:          true,
	})

	require.NoError(t, err)
	assert.Equal(t, "srv-1", document.ID)
}

func TestMyFormNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "form not found")
	}))
	defer srv.Close()

	_, err := loggedInClient(t, srv).MyForm(context.Background())

	assert.ErrorIs(t, err, apiclient.ErrNotFound)
	assert.False(t, errors.Is(err, apiclient.ErrUnauthorized))
}

func TestRefreshRotatesCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "refresh-1", body["refresh_token"])
		writeJSON(w, http.StatusOK, model.TokensPair{AccessToken: "access-2", RefreshToken: "refresh-2", TokenType: "bearer"})
	}))
	defer srv.Close()

	client := loggedInClient(t, srv)
	require.NoError(t, client.Refresh(context.Background()))
	assert.Equal(t, "access-2", client.Session().Token())
}

func TestLogoutAlwaysClearsLocalSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "session closed")
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "credentials.json")
	session := apiclient.NewSession(apiclient.NewMemoryStore(), apiclient.NewFileStore(path))
	require.NoError(t, session.Start(apiclient.Credentials{AccessToken: "access-1"}, true))

	require.NoError(t, apiclient.New(srv.URL, session).Logout(context.Background()))
	assert.Empty(t, session.Token())
	assert.NoFileExists(t, path)
}

func TestReviewDocumentSendsDecision(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/admin/documents/doc-1", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"status": "rejected", "admin_notes": "blurry"}, body)
		writeJSON(w, http.StatusOK, model.Document{ID: "doc-1", Status: model.DocumentRejected, AdminNotes: "blurry"})
	}))
	defer srv.Close()

	session := apiclient.NewSession(nil, nil)
	require.NoError(t, session.Start(apiclient.Credentials{AccessToken: "admin-token", Role: model.RoleAdmin}, false))

	document, err := apiclient.New(srv.URL, session).ReviewDocument(context.Background(), "doc-1", model.DocumentRejected, "blurry")
	require.NoError(t, err)
	assert.Equal(t, model.DocumentRejected, document.Status)
}
