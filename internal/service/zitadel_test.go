package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"cms-service/internal/config"
	"cms-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	objectv2 "github.com/zitadel/zitadel-go/v3/pkg/client/zitadel/object/v2"
	userv2 "github.com/zitadel/zitadel-go/v3/pkg/client/zitadel/user/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// fakeUsers реализует только методы UserService, которые вызывает ZitadelService
type fakeUsers struct {
	userv2.UserServiceClient

	byPhone   map[string]string
	listCalls []*userv2.ListUsersRequest
	created   []*userv2.CreateUserRequest
	listErr   error
	createErr error
	onCreate  func()
}

func (f *fakeUsers) ListUsers(_ context.Context, in *userv2.ListUsersRequest, _ ...grpc.CallOption) (*userv2.ListUsersResponse, error) {
	f.listCalls = append(f.listCalls, in)
	if f.listErr != nil {
		return nil, f.listErr
	}

	resp := &userv2.ListUsersResponse{}
	for _, q := range in.GetQueries() {
		if pq := q.GetPhoneQuery(); pq != nil {
			if id, ok := f.byPhone[pq.GetNumber()]; ok {
				resp.Result = append(resp.Result, &userv2.User{UserId: id})
			}
		}
	}
	return resp, nil
}

func (f *fakeUsers) CreateUser(_ context.Context, in *userv2.CreateUserRequest, _ ...grpc.CallOption) (*userv2.CreateUserResponse, error) {
	f.created = append(f.created, in)
	if f.onCreate != nil {
		f.onCreate()
	}
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &userv2.CreateUserResponse{Id: "user-new"}, nil
}

func TestZitadelEnsureUserFindsExisting(t *testing.T) {
	users := &fakeUsers{byPhone: map[string]string{testPhone: "user-1"}}
	svc := newZitadelService(users, "org-1")

	id, err := svc.EnsureUser(context.Background(), "+7 (999) 123-45-67")
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)
	assert.Empty(t, users.created)

	require.Len(t, users.listCalls, 1)
	queries := users.listCalls[0].GetQueries()
	require.Len(t, queries, 2)
	assert.Equal(t, "org-1", queries[0].GetOrganizationIdQuery().GetOrganizationId())
	assert.Equal(t, testPhone, queries[1].GetPhoneQuery().GetNumber())
	assert.Equal(t, objectv2.TextQueryMethod_TEXT_QUERY_METHOD_EQUALS, queries[1].GetPhoneQuery().GetMethod())
}

func TestZitadelEnsureUserCreatesVerifiedHuman(t *testing.T) {
	users := &fakeUsers{}
	svc := newZitadelService(users, "org-1")

	id, err := svc.EnsureUser(context.Background(), testPhone)
	require.NoError(t, err)
	assert.Equal(t, "user-new", id)

	require.Len(t, users.created, 1)
	req := users.created[0]
	assert.Equal(t, "org-1", req.GetOrganizationId())
	assert.Equal(t, testPhone, req.GetUsername())

	human := req.GetHuman()
	require.NotNil(t, human)
	assert.Equal(t, testPhone, human.GetPhone().GetPhone())
	assert.True(t, human.GetPhone().GetIsVerified())
	assert.Equal(t, "79991234567@phone.local", human.GetEmail().GetEmail())
	assert.True(t, human.GetEmail().GetIsVerified())
}

func TestZitadelEnsureUserConcurrentCreate(t *testing.T) {
	users := &fakeUsers{byPhone: map[string]string{}}
	users.createErr = status.Error(codes.AlreadyExists, "user already exists")
	users.onCreate = func() { users.byPhone[testPhone] = "user-raced" }
	svc := newZitadelService(users, "org-1")

	id, err := svc.EnsureUser(context.Background(), testPhone)
	require.NoError(t, err)
	assert.Equal(t, "user-raced", id)
	assert.Len(t, users.listCalls, 2)
}

func TestZitadelEnsureUserErrors(t *testing.T) {
	users := &fakeUsers{listErr: status.Error(codes.Unavailable, "connection refused")}
	svc := newZitadelService(users, "org-1")

	_, err := svc.EnsureUser(context.Background(), testPhone)
	require.Error(t, err)
	assert.Empty(t, users.created)

	users.listErr = nil
	users.createErr = status.Error(codes.PermissionDenied, "missing role")
	_, err = svc.EnsureUser(context.Background(), testPhone)
	require.Error(t, err)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	_, err = svc.EnsureUser(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrPhoneRequired)
}

func TestNewZitadelServiceRequiresConfig(t *testing.T) {
	_, err := NewZitadelService(context.Background(), config.ZitadelConfig{Domain: "auth.example.com"})
	assert.Error(t, err)
}

// Полный путь: код подтвержден, пользователь найден в Zitadel, id возвращается вызывающему
func TestVerifyCodeReturnsZitadelUser(t *testing.T) {
	svc, _, _ := newTestOTPService(time.Minute)
	defer svc.Stop()

	users := &fakeUsers{byPhone: map[string]string{testPhone: "user-77"}}
	svc.WithIdentityRegistrar(newZitadelService(users, "org-1"))

	require.NoError(t, svc.SendCode(context.Background(), testPhone))
	userID, err := svc.VerifyCode(context.Background(), testPhone, "4821")
	require.NoError(t, err)
	assert.Equal(t, "user-77", userID)

	users.listErr = errors.New("unavailable")
	require.NoError(t, svc.SendCode(context.Background(), testPhone))
	userID, err = svc.VerifyCode(context.Background(), testPhone, "4821")
	require.NoError(t, err)
	assert.Empty(t, userID)
}

var _ IdentityRegistrar = (*ZitadelService)(nil)
