/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: types_test.go
Description: Tests for Kind and Classification rendering and parsing.
*/

package classify_test

import (
	"encoding/json"
	"testing"

	"github.com/kleascm/enro/pkg/classify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassificationRendering(t *testing.T) {
	tests := []struct {
		cls     classify.Classification
		display string
		tag     string
	}{
		{classify.Archive("ZIP"), "Archive (ZIP)", "Archive(ZIP)"},
		{classify.Document("PDF"), "Document (PDF)", "Document(PDF)"},
		{classify.Image("PNG"), "Image (PNG)", "Image(PNG)"},
		{classify.Of(classify.KindEncrypted), "Encrypted", "Encrypted"},
		{classify.Of(classify.KindRandom), "Random Data", "Random"},
		{classify.Of(classify.KindPlainText), "Plain Text", "PlainText"},
		{classify.Of(classify.KindBinary), "Binary", "Binary"},
		{classify.Of(classify.KindCompressed), "Compressed", "Compressed"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.display, tt.cls.String())
		assert.Equal(t, tt.tag, tt.cls.Tag())
	}
}

func TestParseKind(t *testing.T) {
	for _, name := range []string{"plaintext", "Plain Text", "plain-text", "PLAIN_TEXT"} {
		k, err := classify.ParseKind(name)
		require.NoError(t, err, name)
		assert.Equal(t, classify.KindPlainText, k)
	}

	k, err := classify.ParseKind("random data")
	require.NoError(t, err)
	assert.Equal(t, classify.KindRandom, k)

	_, err = classify.ParseKind("archvie")
	assert.Error(t, err)

	for _, kind := range classify.Kinds() {
		parsed, err := classify.ParseKind(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}
}

func TestClassificationJSON(t *testing.T) {
	data, err := json.Marshal(classify.Archive("RAR"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"Archive","label":"RAR"}`, string(data))

	var decoded classify.Classification
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"Encrypted"}`), &decoded))
	assert.Equal(t, classify.Of(classify.KindEncrypted), decoded)
}
