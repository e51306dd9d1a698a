package classifier_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gasdoc/internal/classifier"
	"gasdoc/internal/domain"
	"gasdoc/internal/port"
	"gasdoc/mocks"
)

func TestContentRouter_TextGoesToScanner(t *testing.T) {
	remote := new(mocks.MockSignalSource)
	router := classifier.NewContentRouter(classifier.NewKeywordScanner(), remote)

	sig, err := router.ClassifyDocument(context.Background(), port.DocumentInput{
		Content:     []byte("Statement of Account - Arthit"),
		ContentType: "text/plain",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Arthit"}, sig.Platforms)
	remote.AssertNotCalled(t, "ClassifyDocument", mock.Anything, mock.Anything)
}

func TestContentRouter_PDFGoesToRemote(t *testing.T) {
	remote := new(mocks.MockSignalSource)
	in := port.DocumentInput{Content: []byte("%PDF-1.7"), ContentType: "application/pdf"}
	remote.On("ClassifyDocument", mock.Anything, in).Return(&domain.Signals{Platforms: []string{"C5"}}, nil)

	sig, err := classifier.NewContentRouter(classifier.NewKeywordScanner(), remote).ClassifyDocument(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, []string{"C5"}, sig.Platforms)
	remote.AssertExpectations(t)
}

func TestContentRouter_NoRemote(t *testing.T) {
	router := classifier.NewContentRouter(classifier.NewKeywordScanner(), nil)

	sig, err := router.ClassifyDocument(context.Background(), port.DocumentInput{
		Content:     []byte("%PDF-1.7 ... (G4/48) Tj ... (C5) Tj"),
		ContentType: "application/pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"G4/48", "C5"}, sig.Platforms)
}
