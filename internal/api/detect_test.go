package api_test

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// detectRequest builds a multipart upload. An empty filename omits the file.
func detectRequest(t *testing.T, filename string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/detect-image", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func serve(env *testEnv, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}

func assertUploadsCleaned(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary uploads must be removed")
}

func TestDetectIngredient(t *testing.T) {
	env := newTestEnv(t)
	env.classifier.label = "Tomato"

	rr := serve(env, detectRequest(t, "fridge.jpg", []byte("jpeg-bytes"), nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	body := decodeObject(t, rr)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "Tomato", body["ingredient"])
	assert.Equal(t, true, body["saved"])
	assert.Equal(t, true, body["created"])

	assert.Equal(t, "fridge.jpg", env.classifier.lastFilename)
	assert.Equal(t, []byte("jpeg-bytes"), env.classifier.lastImage)
	require.Len(t, env.ingredients.items, 1)
	assert.EqualValues(t, 1, env.ingredients.items[0].UserID)
	assertUploadsCleaned(t, env.handler.UploadDir)

	env.classifier.label = "tomato"
	rr = serve(env, detectRequest(t, "again.png", []byte("png"), nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, false, decodeObject(t, rr)["created"])
	assert.Len(t, env.ingredients.items, 1)
}

func TestDetectIngredient_FormUser(t *testing.T) {
	env := newTestEnv(t)
	env.classifier.label = "Lime"

	rr := serve(env, detectRequest(t, "lime.jpg", []byte("x"), map[string]string{"userID": "4"}))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Len(t, env.ingredients.items, 1)
	assert.EqualValues(t, 4, env.ingredients.items[0].UserID)

	rr = serve(env, detectRequest(t, "lime.jpg", []byte("x"), map[string]string{"userID": "four"}))
	assertError(t, rr, http.StatusBadRequest, "userID must be a positive integer")
}

func TestDetectIngredient_NothingDetected(t *testing.T) {
	env := newTestEnv(t)

	rr := serve(env, detectRequest(t, "blank.jpg", []byte("x"), nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"ok":true,"ingredient":null,"saved":false}`, rr.Body.String())
	assert.Empty(t, env.ingredients.items)
	assertUploadsCleaned(t, env.handler.UploadDir)
}

func TestDetectIngredient_NoFile(t *testing.T) {
	env := newTestEnv(t)

	rr := serve(env, detectRequest(t, "", nil, map[string]string{"userID": "1"}))
	assertError(t, rr, http.StatusBadRequest, "No file uploaded")
}

func TestDetectIngredient_ClassifierError(t *testing.T) {
	env := newTestEnv(t)
	env.classifier.err = errors.New("received non-OK status code: 503")

	rr := serve(env, detectRequest(t, "fridge.jpg", []byte("x"), nil))
	assertError(t, rr, http.StatusInternalServerError, "Failed to detect/save ingredient")
	assert.Empty(t, env.ingredients.items)
	assertUploadsCleaned(t, env.handler.UploadDir)
}

func TestDetectIngredient_StoreError(t *testing.T) {
	env := newTestEnv(t)
	env.classifier.label = "Basil"
	env.ingredients.err = errors.New("deadlock detected")

	rr := serve(env, detectRequest(t, "basil.jpg", []byte("x"), nil))
	assertError(t, rr, http.StatusInternalServerError, "Failed to detect/save ingredient")
}
