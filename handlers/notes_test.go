package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notes-backend/models"
)

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func createNote(t *testing.T, env *testEnv, token, title, content string) models.Note {
	t.Helper()
	rr := env.do(t, "POST", "/notes", token, map[string]string{"title": title, "content": content})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var note models.Note
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &note))
	return note
}

func listNotes(t *testing.T, env *testEnv, token, query string) []models.Note {
	t.Helper()
	rr := env.do(t, "GET", "/notes"+query, token, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var notes []models.Note
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &notes))
	return notes
}

func TestCreateNote(t *testing.T) {
	env := setupTestEnv(t)
	user, token := env.seedUser(t, "user1@example.com", "password")

	t.Run("Create note", func(t *testing.T) {
		note := createNote(t, env, token, "Title", "Body")
		assert.NotZero(t, note.ID)
		assert.Equal(t, user.ID, note.OwnerID)
		assert.Equal(t, "Title", note.Title)
		assert.Equal(t, "Body", note.Content)
		assert.True(t, note.CreatedAt.Equal(note.UpdatedAt))
	})

	t.Run("Empty strings are allowed", func(t *testing.T) {
		note := createNote(t, env, token, "", "")
		assert.Equal(t, "", note.Title)
	})

	t.Run("Title at the limit", func(t *testing.T) {
		note := createNote(t, env, token, strings.Repeat("é", 255), "x")
		assert.Equal(t, 255, len([]rune(note.Title)))
	})

	t.Run("Title too long", func(t *testing.T) {
		rr := env.do(t, "POST", "/notes", token, map[string]string{"title": strings.Repeat("a", 256), "content": "x"})
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Contains(t, rr.Body.String(), `"loc":["body","title"]`)
	})

	t.Run("Missing content", func(t *testing.T) {
		rr := env.do(t, "POST", "/notes", token, map[string]string{"title": "t"})
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Contains(t, rr.Body.String(), `"loc":["body","content"]`)
	})

	t.Run("No token", func(t *testing.T) {
		rr := env.do(t, "POST", "/notes", "", map[string]string{"title": "t", "content": "c"})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestGetNote(t *testing.T) {
	env := setupTestEnv(t)
	_, token := env.seedUser(t, "user1@example.com", "password")
	note := createNote(t, env, token, "T", "C")

	t.Run("Own note", func(t *testing.T) {
		rr := env.do(t, "GET", "/notes/"+itoa(note.ID), token, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var got models.Note
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, note.Title, got.Title)
		assert.Equal(t, note.Content, got.Content)
		assert.True(t, got.CreatedAt.Equal(got.UpdatedAt))
	})

	t.Run("Response fields", func(t *testing.T) {
		rr := env.do(t, "GET", "/notes/"+itoa(note.ID), token, nil)
		var raw map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
		for _, key := range []string{"id", "title", "content", "created_at", "updated_at", "owner_id"} {
			assert.Contains(t, raw, key)
		}
		assert.Len(t, raw, 6)
	})

	t.Run("Non-existent note", func(t *testing.T) {
		rr := env.do(t, "GET", "/notes/99999", token, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "Note not found", decodeDetail(t, rr))
	})

	t.Run("Non-integer id", func(t *testing.T) {
		rr := env.do(t, "GET", "/notes/abc", token, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Contains(t, rr.Body.String(), `"loc":["path","note_id"]`)
	})
}

func TestUpdateNote(t *testing.T) {
	env := setupTestEnv(t)
	_, token := env.seedUser(t, "user1@example.com", "password")
	note := createNote(t, env, token, "T1", "hello alpha")

	t.Run("Content only", func(t *testing.T) {
		rr := env.do(t, "PUT", "/notes/"+itoa(note.ID), token, map[string]string{"content": "hello beta"})
		require.Equal(t, http.StatusOK, rr.Code)
		var got models.Note
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "T1", got.Title)
		assert.Equal(t, "hello beta", got.Content)
		assert.True(t, got.UpdatedAt.After(note.UpdatedAt))
		assert.True(t, got.CreatedAt.Equal(note.CreatedAt))
	})

	t.Run("Title via PATCH", func(t *testing.T) {
		rr := env.do(t, "PATCH", "/notes/"+itoa(note.ID), token, map[string]string{"title": "T2"})
		require.Equal(t, http.StatusOK, rr.Code)
		var got models.Note
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "T2", got.Title)
		assert.Equal(t, "hello beta", got.Content)
	})

	t.Run("Title too long", func(t *testing.T) {
		rr := env.do(t, "PUT", "/notes/"+itoa(note.ID), token, map[string]string{"title": strings.Repeat("a", 256)})
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})

	t.Run("Non-existent note", func(t *testing.T) {
		rr := env.do(t, "PUT", "/notes/99999", token, map[string]string{"title": "x"})
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestDeleteNote(t *testing.T) {
	env := setupTestEnv(t)
	_, token := env.seedUser(t, "user1@example.com", "password")
	note := createNote(t, env, token, "T", "C")

	t.Run("Delete own note", func(t *testing.T) {
		rr := env.do(t, "DELETE", "/notes/"+itoa(note.ID), token, nil)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Empty(t, rr.Body.String())
	})

	t.Run("Delete again", func(t *testing.T) {
		rr := env.do(t, "DELETE", "/notes/"+itoa(note.ID), token, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("Get after delete", func(t *testing.T) {
		rr := env.do(t, "GET", "/notes/"+itoa(note.ID), token, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestNotesAreIsolatedBetweenUsers(t *testing.T) {
	env := setupTestEnv(t)
	_, tokenA := env.seedUser(t, "a@example.com", "password")
	_, tokenB := env.seedUser(t, "b@example.com", "password")
	noteA := createNote(t, env, tokenA, "A's note", "private alpha")
	createNote(t, env, tokenB, "B's note", "bob")

	missing := env.do(t, "GET", "/notes/99999", tokenB, nil)

	cases := []struct {
		name   string
		method string
		body   any
	}{
		{"get", "GET", nil},
		{"update", "PUT", map[string]string{"title": "hijacked"}},
		{"delete", "DELETE", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := env.do(t, tc.method, "/notes/"+itoa(noteA.ID), tokenB, tc.body)
			assert.Equal(t, http.StatusNotFound, rr.Code)
			assert.Equal(t, missing.Body.String(), rr.Body.String())
		})
	}

	t.Run("list", func(t *testing.T) {
		notes := listNotes(t, env, tokenB, "?q=alpha")
		assert.Empty(t, notes)
		notes = listNotes(t, env, tokenB, "")
		require.Len(t, notes, 1)
		assert.Equal(t, "B's note", notes[0].Title)
	})

	rr := env.do(t, "GET", "/notes/"+itoa(noteA.ID), tokenA, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var got models.Note
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "A's note", got.Title)
}

func TestListNotes(t *testing.T) {
	env := setupTestEnv(t)
	_, token := env.seedUser(t, "user1@example.com", "password")

	var created []models.Note
	for i := 0; i < 25; i++ {
		created = append(created, createNote(t, env, token, "note "+strconv.Itoa(i), "body"))
	}

	t.Run("Empty list is an array", func(t *testing.T) {
		_, other := env.seedUser(t, "empty@example.com", "password")
		rr := env.do(t, "GET", "/notes", other, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
	})

	t.Run("Default limit", func(t *testing.T) {
		notes := listNotes(t, env, token, "")
		assert.Len(t, notes, 20)
		for i := 1; i < len(notes); i++ {
			assert.False(t, notes[i].UpdatedAt.After(notes[i-1].UpdatedAt))
		}
		assert.Equal(t, created[len(created)-1].ID, notes[0].ID)
	})

	t.Run("Skip and limit", func(t *testing.T) {
		notes := listNotes(t, env, token, "?skip=20&limit=10")
		assert.Len(t, notes, 5)
		notes = listNotes(t, env, token, "?limit=100")
		assert.Len(t, notes, 25)
	})

	t.Run("Search", func(t *testing.T) {
		notes := listNotes(t, env, token, "?q=NOTE+1")
		// note 1, note 10..19
		assert.Len(t, notes, 11)
	})

	for _, query := range []string{"?skip=-1", "?skip=x", "?limit=0", "?limit=101", "?limit=abc"} {
		t.Run("Rejects "+query, func(t *testing.T) {
			rr := env.do(t, "GET", "/notes"+query, token, nil)
			assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
			assert.Contains(t, rr.Body.String(), `"query"`)
		})
	}
}

func TestNotesScenario(t *testing.T) {
	env := setupTestEnv(t)

	rr := env.do(t, "POST", "/auth/register", "", map[string]string{"email": "a@x.com", "password": "secret1"})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = env.do(t, "POST", "/auth/login", "", map[string]string{"email": "a@x.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, rr.Code)
	var tok models.Token
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &tok))
	token := tok.AccessToken

	note := createNote(t, env, token, "T1", "hello alpha")
	assert.Equal(t, int64(1), note.ID)

	notes := listNotes(t, env, token, "?q=ALPHA")
	require.Len(t, notes, 1)
	assert.Equal(t, int64(1), notes[0].ID)

	rr = env.do(t, "PUT", "/notes/1", token, map[string]string{"content": "hello beta"})
	require.Equal(t, http.StatusOK, rr.Code)
	var updated models.Note
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, "T1", updated.Title)
	assert.Equal(t, "hello beta", updated.Content)

	rr = env.do(t, "DELETE", "/notes/1", token, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = env.do(t, "GET", "/notes/1", token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUnknownRoute(t *testing.T) {
	env := setupTestEnv(t)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, httptest.NewRequest("GET", "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}
