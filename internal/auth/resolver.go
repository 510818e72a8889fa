package auth

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"

	"github.com/quickai/quickai/internal/models"
)

const (
	metaPlanKey      = "plan"
	metaFreeUsageKey = "free_usage"
)

// gotrueAPI is the slice of the GoTrue client the resolver needs; narrowed
// so tests can substitute a fake.
type gotrueAPI interface {
	AdminGetUser(req types.AdminGetUserRequest) (*types.AdminGetUserResponse, error)
	AdminUpdateUser(req types.AdminUpdateUserRequest) (*types.AdminUpdateUserResponse, error)
	SignInWithEmailPassword(email, password string) (*types.TokenResponse, error)
}

// SupabaseResolver resolves a subject's entitlement tier and free-tier usage
// from GoTrue app metadata, and writes the usage counter back through the
// admin API.
type SupabaseResolver struct {
	client gotrueAPI
}

// extractProjectRef reduces a Supabase URL like
// https://akrqbuajqkirdekonpzy.supabase.co to its project reference ID.
func extractProjectRef(url string) string {
	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "http://")
	parts := strings.Split(url, ".")
	return parts[0]
}

func NewSupabaseResolver(supabaseURL, serviceKey string) *SupabaseResolver {
	projectRef := extractProjectRef(supabaseURL)
	client := gotrue.New(projectRef, serviceKey).WithToken(serviceKey)
	return &SupabaseResolver{client: client}
}

// Resolve reads (plan, free_usage) for one subject. The GoTrue client does
// its own HTTP round trip; ctx is accepted for interface symmetry with the
// other upstream clients.
func (r *SupabaseResolver) Resolve(_ context.Context, userID string) (models.PlanState, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return models.PlanState{}, models.WrapError(models.KindUnauthorized, "Unauthorized", err)
	}

	resp, err := r.client.AdminGetUser(types.AdminGetUserRequest{UserID: uid})
	if err != nil {
		return models.PlanState{}, models.WrapError(models.KindAuthResolution, "Auth failed", err)
	}

	state := models.PlanState{
		UserID:    userID,
		Plan:      models.PlanFree,
		FreeUsage: 0,
	}
	if plan, ok := resp.AppMetadata[metaPlanKey].(string); ok && plan == models.PlanPremium {
		state.Plan = models.PlanPremium
	}
	if usage, ok := resp.AppMetadata[metaFreeUsageKey].(float64); ok {
		state.FreeUsage = int(usage)
	}
	return state, nil
}

// IncrementUsage bumps the free-tier counter by one. Callers treat failure
// as best-effort; the error is returned only so it can be logged.
func (r *SupabaseResolver) IncrementUsage(_ context.Context, userID string, current int) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return models.WrapError(models.KindAuthResolution, "Auth failed", err)
	}

	_, err = r.client.AdminUpdateUser(types.AdminUpdateUserRequest{
		UserID: uid,
		AppMetadata: map[string]interface{}{
			metaFreeUsageKey: current + 1,
		},
	})
	if err != nil {
		return models.WrapError(models.KindAuthResolution, "Failed to update usage", err)
	}
	return nil
}

// Login performs the password grant against GoTrue and returns the provider
// access token, which the API hands back to the client as its bearer token.
func (r *SupabaseResolver) Login(_ context.Context, email, password string) (string, error) {
	resp, err := r.client.SignInWithEmailPassword(email, password)
	if err != nil {
		slog.Info("Authentication failed", "email", email, "error", err)
		return "", models.WrapError(models.KindUnauthorized, "Invalid credentials", err)
	}
	if resp == nil || resp.AccessToken == "" {
		return "", models.NewError(models.KindUnauthorized, "Invalid credentials")
	}
	return resp.AccessToken, nil
}
