package service

import (
	"context"
	"fmt"

	"cms-service/internal/config"
	"cms-service/internal/domain"

	log "github.com/sirupsen/logrus"
	"github.com/zitadel/zitadel-go/v3/pkg/client"
	objectv2 "github.com/zitadel/zitadel-go/v3/pkg/client/zitadel/object/v2"
	userv2 "github.com/zitadel/zitadel-go/v3/pkg/client/zitadel/user/v2"
	"github.com/zitadel/zitadel-go/v3/pkg/zitadel"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ZitadelService связывает подтвержденные по SMS телефоны с пользователями Zitadel.
// Id пользователя попадает в документы contact/client как identityUserId.
type ZitadelService struct {
	users userv2.UserServiceClient
	orgID string
}

// NewZitadelService подключается к Zitadel от имени сервисного аккаунта
func NewZitadelService(ctx context.Context, cfg config.ZitadelConfig) (*ZitadelService, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("zitadel requires ZITADEL_DOMAIN, ZITADEL_ORG_ID and a PAT or key file")
	}

	instance := zitadel.New(cfg.Domain)
	if cfg.Domain == "localhost" || cfg.Domain == "homelab.localhost" {
		instance = zitadel.New(cfg.Domain, zitadel.WithInsecure("8080"))
		log.WithField("domain", cfg.Domain).Warn("Using insecure connection to Zitadel")
	}

	auth := client.DefaultServiceUserAuthentication(cfg.KeyPath, client.ScopeZitadelAPI())
	if cfg.PAT != "" {
		auth = client.PAT(cfg.PAT)
	}

	c, err := client.New(ctx, instance, client.WithAuth(auth))
	if err != nil {
		return nil, fmt.Errorf("failed to create zitadel client: %w", err)
	}

	log.WithField("domain", cfg.Domain).Info("Zitadel client initialized")

	return newZitadelService(c.UserServiceV2(), cfg.OrgID), nil
}

func newZitadelService(users userv2.UserServiceClient, orgID string) *ZitadelService {
	return &ZitadelService{users: users, orgID: orgID}
}

// EnsureUser возвращает id пользователя организации с этим телефоном, создавая его при отсутствии
func (s *ZitadelService) EnsureUser(ctx context.Context, phone string) (string, error) {
	phone = domain.NormalizePhone(phone)
	if phone == "" {
		return "", domain.ErrPhoneRequired
	}

	userID, err := s.findByPhone(ctx, phone)
	if err != nil || userID != "" {
		return userID, err
	}

	userID, err = s.createWithPhone(ctx, phone)
	if status.Code(err) == codes.AlreadyExists {
		// параллельная верификация того же номера успела создать пользователя
		return s.findByPhone(ctx, phone)
	}
	return userID, err
}

func (s *ZitadelService) findByPhone(ctx context.Context, phone string) (string, error) {
	resp, err := s.users.ListUsers(ctx, &userv2.ListUsersRequest{
		Queries: []*userv2.SearchQuery{
			{Query: &userv2.SearchQuery_OrganizationIdQuery{
				OrganizationIdQuery: &userv2.OrganizationIdQuery{OrganizationId: s.orgID},
			}},
			{Query: &userv2.SearchQuery_PhoneQuery{
				PhoneQuery: &userv2.PhoneQuery{
					Number: phone,
					Method: objectv2.TextQueryMethod_TEXT_QUERY_METHOD_EQUALS,
				},
			}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to search zitadel user by phone: %w", err)
	}

	for _, u := range resp.GetResult() {
		if id := u.GetUserId(); id != "" {
			return id, nil
		}
	}
	return "", nil
}

func (s *ZitadelService) createWithPhone(ctx context.Context, phone string) (string, error) {
	digits := domain.PhoneDigits(phone)
	username := phone
	displayName := "Site visitor " + phone

	resp, err := s.users.CreateUser(ctx, &userv2.CreateUserRequest{
		OrganizationId: s.orgID,
		Username:       &username,
		UserType: &userv2.CreateUserRequest_Human_{
			Human: &userv2.CreateUserRequest_Human{
				Profile: &userv2.SetHumanProfile{
					GivenName:   phone,
					FamilyName:  phone,
					DisplayName: &displayName,
				},
				// email у human-пользователя обязателен; настоящего адреса у посетителя нет
				Email: &userv2.SetHumanEmail{
					Email:        digits + "@phone.local",
					Verification: &userv2.SetHumanEmail_IsVerified{IsVerified: true},
				},
				Phone: &userv2.SetHumanPhone{
					Phone:        phone,
					Verification: &userv2.SetHumanPhone_IsVerified{IsVerified: true},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create zitadel user: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id": resp.GetId(),
		"phone":   phone,
	}).Info("Zitadel user created for verified phone")

	return resp.GetId(), nil
}
