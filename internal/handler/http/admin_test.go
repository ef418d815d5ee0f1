package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-money-keeper/internal/service"
	"github.com/MKhiriev/go-money-keeper/models"
)

// asRoot expects one session lookup for the administrator.
func asRoot(m serviceMocks) {
	m.sessions.EXPECT().Verify(gomock.Any(), root.SessionToken).Return(root, nil)
}

func TestAdmin_RegularUserForbidden(t *testing.T) {
	routes := []struct{ method, path string }{
		{http.MethodDelete, "/admin/users/7/sessions"},
		{http.MethodPost, "/admin/users/7/unlock"},
		{http.MethodPatch, "/admin/users/7/active"},
		{http.MethodDelete, "/admin/users/7"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			h, m := newMockedHandler(t)
			m.sessions.EXPECT().Verify(gomock.Any(), alice.SessionToken).Return(alice, nil)

			rec := serve(h, withSession(newRequest(t, route.method, route.path, nil), alice.SessionToken))

			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Equal(t, "FORBIDDEN", decodeBody[models.ErrorResponse](t, rec).Code)
		})
	}
}

func TestAdminRevokeSessions(t *testing.T) {
	h, m := newMockedHandler(t)
	asRoot(m)
	m.admin.EXPECT().RevokeSessions(gomock.Any(), int64(7)).Return(int64(3), nil)

	rec := serve(h, withSession(newRequest(t, http.MethodDelete, "/admin/users/7/sessions", nil), root.SessionToken))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "revoked 3 session(s)", decodeBody[models.SuccessResponse](t, rec).Message)
}

func TestAdminUnlock(t *testing.T) {
	h, m := newMockedHandler(t)
	asRoot(m)
	m.admin.EXPECT().Unlock(gomock.Any(), int64(7)).Return(nil)

	rec := serve(h, withSession(newRequest(t, http.MethodPost, "/admin/users/7/unlock", nil), root.SessionToken))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminUnlock_UnknownUser(t *testing.T) {
	h, m := newMockedHandler(t)
	asRoot(m)
	m.admin.EXPECT().Unlock(gomock.Any(), int64(404)).Return(service.ErrNotFound)

	rec := serve(h, withSession(newRequest(t, http.MethodPost, "/admin/users/404/unlock", nil), root.SessionToken))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdmin_BadUserID(t *testing.T) {
	for _, id := range []string{"abc", "0", "-3"} {
		t.Run(id, func(t *testing.T) {
			h, m := newMockedHandler(t)
			asRoot(m)

			rec := serve(h, withSession(newRequest(t, http.MethodPost, "/admin/users/"+id+"/unlock", nil), root.SessionToken))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestAdminSetActive(t *testing.T) {
	h, m := newMockedHandler(t)
	asRoot(m)
	m.admin.EXPECT().SetActive(gomock.Any(), root, int64(7), false).Return(nil)

	inactive := false
	rec := serve(h, withSession(newRequest(t, http.MethodPatch, "/admin/users/7/active", models.SetActiveRequest{Active: &inactive}), root.SessionToken))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminSetActive_MissingFlag(t *testing.T) {
	h, m := newMockedHandler(t)
	asRoot(m)

	rec := serve(h, withSession(newRequest(t, http.MethodPatch, "/admin/users/7/active", `{}`), root.SessionToken))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeBody[models.ErrorResponse](t, rec).Code)
}

func TestAdminSetActive_Self(t *testing.T) {
	h, m := newMockedHandler(t)
	asRoot(m)
	m.admin.EXPECT().SetActive(gomock.Any(), root, root.UserID, false).Return(service.ErrCannotModifySelf)

	inactive := false
	rec := serve(h, withSession(newRequest(t, http.MethodPatch, "/admin/users/1/active", models.SetActiveRequest{Active: &inactive}), root.SessionToken))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "CANNOT_MODIFY_SELF", decodeBody[models.ErrorResponse](t, rec).Code)
}

func TestAdminPurgeUser(t *testing.T) {
	h, m := newMockedHandler(t)
	asRoot(m)
	m.admin.EXPECT().PurgeUser(gomock.Any(), root, int64(7)).Return(nil)

	rec := serve(h, withSession(newRequest(t, http.MethodDelete, "/admin/users/7", nil), root.SessionToken))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[models.SuccessResponse](t, rec).Success)
}
