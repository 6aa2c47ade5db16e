package server

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDeactivateChannelArchiveIsOptIn(t *testing.T) {
	mappingID := primitive.NewObjectID()
	headers := map[string]string{"X-User-ID": "u-7"}

	var gotID primitive.ObjectID
	var gotArchive bool
	messaging := &fakeMessaging{
		t: t,
		deactivate: func(ctx context.Context, id primitive.ObjectID, archiveExternal bool) error {
			gotID = id
			gotArchive = archiveExternal
			return nil
		},
	}
	e := newTestServer(nil, messaging)
	path := "/api/v1/events/evt-1/channels/" + mappingID.Hex()

	// Without the query param only the local mapping is deactivated.
	rec := doJSON(e, http.MethodDelete, path, "", headers)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, mappingID, gotID)
	assert.False(t, gotArchive)

	rec = doJSON(e, http.MethodDelete, path+"?archive=true", "", headers)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, gotArchive)

	rec = doJSON(e, http.MethodDelete, path+"?archive=false", "", headers)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, gotArchive)
}
