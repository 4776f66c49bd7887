package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampUnmarshal(t *testing.T) {
	cases := map[string]time.Time{
		`"2024-05-01T10:30:00Z"`:       time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
		`"2024-05-01T10:30:00+05:00"`:  time.Date(2024, 5, 1, 5, 30, 0, 0, time.UTC),
		`"2024-05-01T10:30:00.123456"`: time.Date(2024, 5, 1, 10, 30, 0, 123456000, time.UTC),
		`"2024-05-01T10:30:00"`:        time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
		`"2024-05-01"`:                 time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		`null`:                         {},
		`""`:                           {},
	}
	for raw, want := range cases {
		t.Run(raw, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(raw), &ts))
			assert.True(t, want.Equal(ts.Time), "got %s", ts.Time)
		})
	}

	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
}

func TestTimestampMarshal(t *testing.T) {
	out, err := json.Marshal(struct {
		A Timestamp `json:"a"`
		B Timestamp `json:"b"`
	}{A: Timestamp{Time: time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"2024-05-01T10:30:00Z","b":null}`, string(out))
}

func TestCodeForStatus(t *testing.T) {
	cases := map[int]ErrorCode{
		http.StatusBadRequest:          ErrCodeInvalid,
		http.StatusUnauthorized:        ErrCodeUnauthorized,
		http.StatusForbidden:           ErrCodeForbidden,
		http.StatusNotFound:            ErrCodeNotFound,
		http.StatusConflict:            ErrCodeConflict,
		http.StatusUnprocessableEntity: ErrCodeInvalid,
		http.StatusBadGateway:          ErrCodeUnavailable,
		http.StatusInternalServerError: ErrCodeInternal,
	}
	for status, want := range cases {
		assert.Equal(t, want, CodeForStatus(status), "status %d", status)
	}
}

func TestReason(t *testing.T) {
	apiErr := &APIError{Status: 401, Detail: "Incorrect username or password"}

	assert.Equal(t, "Incorrect username or password", Reason(apiErr, "login failed"))
	assert.Equal(t, "Incorrect username or password", Reason(WrapError(ErrCodeUnauthorized, "authentication failed", apiErr), "login failed"))
	assert.Equal(t, "login failed", Reason(&APIError{Status: 500}, "login failed"))
	assert.Equal(t, "login failed", Reason(errors.New("dial tcp"), "login failed"))
	assert.Empty(t, Reason(nil, "login failed"))
}

func TestErrorMatching(t *testing.T) {
	wrapped := WrapError(ErrCodeUnauthorized, ErrAuthenticationFailed.Message, &APIError{Status: 401})

	assert.ErrorIs(t, wrapped, ErrAuthenticationFailed)
	assert.NotErrorIs(t, wrapped, ErrNotAuthenticated)
	assert.True(t, IsDomainError(fmt.Errorf("login: %w", wrapped), ErrCodeUnauthorized))
	assert.True(t, IsDomainError(&APIError{Status: 404}, ErrCodeNotFound))
	assert.False(t, IsDomainError(errors.New("plain"), ErrCodeInternal))
	assert.Equal(t, "authentication failed: backend returned 401", wrapped.Error())
}

func TestSessionState(t *testing.T) {
	var empty Session
	assert.False(t, empty.IsAuthenticated())
	assert.False(t, empty.IsExpired(time.Now()))

	now := time.Now()
	s := Session{Credential: "tok", Identity: &Identity{Username: "alice"}, ExpiresAt: now}
	assert.True(t, s.IsAuthenticated())
	assert.True(t, s.IsExpired(now))
	assert.False(t, s.IsExpired(now.Add(-time.Second)))

	clone := s.Clone()
	clone.Identity.Username = "bob"
	assert.Equal(t, "alice", s.Identity.Username)
}

func TestCameraConnectionNormalize(t *testing.T) {
	c := CameraConnection{IPAddress: "10.0.0.5"}
	require.NoError(t, c.Normalize())
	assert.Equal(t, DefaultCameraPort, c.Port)

	assert.True(t, IsDomainError((&CameraConnection{}).Normalize(), ErrCodeInvalid))
	assert.True(t, IsDomainError((&CameraConnection{IPAddress: "x", Port: 70000}).Normalize(), ErrCodeInvalid))
}

func TestLocationInputValidateCreate(t *testing.T) {
	name, addr, kind := "Cafe", "Main st 1", "cafe"
	assert.NoError(t, LocationInput{Name: &name, Address: &addr, LocationType: &kind}.ValidateCreate())
	assert.Error(t, LocationInput{Address: &addr, LocationType: &kind}.ValidateCreate())
	assert.Error(t, LocationInput{Name: &name, LocationType: &kind}.ValidateCreate())
	assert.Error(t, LocationInput{Name: &name, Address: &addr}.ValidateCreate())

	body, err := json.Marshal(LocationInput{Name: &name})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Cafe"}`, string(body))
}

func TestIdentityDisplayName(t *testing.T) {
	assert.Equal(t, "Alice Doe", (&Identity{Username: "alice", FullName: "Alice Doe"}).DisplayName())
	assert.Equal(t, "alice", (&Identity{Username: "alice"}).DisplayName())
	var nobody *Identity
	assert.Empty(t, nobody.DisplayName())
}
