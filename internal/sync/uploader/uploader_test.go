package uploader

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jeevan/internal/domain"
	syncer "jeevan/internal/sync"
	"jeevan/pkg/platform/sentinel"
)

func TestSimulatedSucceedsByDefault(t *testing.T) {
	up := NewSimulated(0)
	require.NoError(t, up.UploadBatch(context.Background(), syncer.Batch{}))
}

func TestSimulatedFailureInjection(t *testing.T) {
	up := NewSimulated(0)
	up.SetFail(true)

	err := up.UploadBatch(context.Background(), syncer.Batch{})
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)

	up.SetFail(false)
	require.NoError(t, up.UploadBatch(context.Background(), syncer.Batch{}))
}

func TestSimulatedHonorsContextDuringDelay(t *testing.T) {
	up := NewSimulated(time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := up.UploadBatch(ctx, syncer.Batch{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHTTPUploadsBatchAsJSON(t *testing.T) {
	var received syncer.Batch
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	up := NewHTTP(srv.URL)
	batch := syncer.Batch{
		Records: []domain.SecureRecord{{ID: "rec-1", Status: domain.RecordPendingSync}},
		Submissions: []domain.Submission{
			{ReferenceID: "REF-1", BeneficiaryID: "B-1", Type: domain.ActionProofOfLife},
		},
	}
	require.NoError(t, up.UploadBatch(context.Background(), batch))

	require.Len(t, received.Records, 1)
	require.Len(t, received.Submissions, 1)
	assert.Equal(t, "REF-1", received.Submissions[0].ReferenceID)
}

func TestHTTPTreatsNon2xxAsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewHTTP(srv.URL).UploadBatch(context.Background(), syncer.Batch{})
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
}

func TestHTTPTreatsTransportErrorAsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	err := NewHTTP(srv.URL).UploadBatch(context.Background(), syncer.Batch{})
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
}
