package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/quickai/quickai/internal/media"
	"github.com/quickai/quickai/internal/models"
)

// Operation names, as used in routes and the plan-gate config.
const (
	OpGenerateArticle   = "generate-article"
	OpGenerateBlogTitle = "generate-blog-title"
	OpGenerateImage     = "generate-image"
	OpRemoveBackground  = "remove-image-background"
	OpRemoveObject      = "remove-image-object"
	OpReviewResume      = "review-resume"
)

const (
	blogTitleTokenBudget = 700
	resumeTokenBudget    = 1500
	minResumeTextLen     = 100

	resumeSystemPrompt = "You are an expert technical recruiter. Review the resume and provide feedback in Markdown format. Focus on: 1. Visual Layout, 2. Impact of Bullet Points (STAR method), 3. Skill Keywords, and 4. Final Score (0-100)."
)

var (
	creationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quickai_creations_total",
		Help: "Creations persisted, by type.",
	}, []string{"type"})

	upstreamErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quickai_upstream_errors_total",
		Help: "Failed upstream calls, by provider.",
	}, []string{"provider"})
)

// PlanResolver resolves a subject's entitlement and maintains its free-tier
// usage counter.
type PlanResolver interface {
	Resolve(ctx context.Context, userID string) (models.PlanState, error)
	IncrementUsage(ctx context.Context, userID string, current int) error
}

type TextGenerator interface {
	GenerateText(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float32) (string, error)
}

type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

type MediaStore interface {
	Upload(ctx context.Context, src media.Source, folder, transformation string) (media.UploadResult, error)
	TransformedURL(assetID, transformation string) (string, error)
}

type CreationStore interface {
	Insert(ctx context.Context, c models.NewCreation) (int, error)
	ListByOwner(ctx context.Context, userID string) ([]models.Creation, error)
	ListPublished(ctx context.Context) ([]models.Creation, error)
	ToggleLike(ctx context.Context, id int, userID string) (bool, error)
}

type EventPublisher interface {
	PublishCreation(event models.CreationEvent) error
}

type FeedCache interface {
	Get(ctx context.Context) ([]models.Creation, bool)
	Set(ctx context.Context, creations []models.Creation)
	Invalidate(ctx context.Context)
}

// PDFExtractor pulls plain text out of PDF bytes.
type PDFExtractor func(data []byte) (string, error)

// CreationService runs the creation request lifecycle: validate, resolve
// plan, call the upstream, persist, account usage, respond.
type CreationService struct {
	plans     PlanResolver
	texts     TextGenerator
	images    ImageGenerator
	store     MediaStore
	creations CreationStore
	extract   PDFExtractor
	events    EventPublisher
	feed      FeedCache
	planGates map[string]string
}

func NewCreationService(
	plans PlanResolver,
	texts TextGenerator,
	images ImageGenerator,
	store MediaStore,
	creations CreationStore,
	extract PDFExtractor,
	events EventPublisher,
	feed FeedCache,
	planGates map[string]string,
) *CreationService {
	if planGates == nil {
		planGates = map[string]string{}
	}
	return &CreationService{
		plans:     plans,
		texts:     texts,
		images:    images,
		store:     store,
		creations: creations,
		extract:   extract,
		events:    events,
		feed:      feed,
		planGates: planGates,
	}
}

// resolvePlan runs steps 2 of the lifecycle: subject resolution plus the
// configured plan gate for the operation.
func (s *CreationService) resolvePlan(ctx context.Context, userID, operation string) (models.PlanState, error) {
	state, err := s.plans.Resolve(ctx, userID)
	if err != nil {
		return models.PlanState{}, err
	}
	if required, gated := s.planGates[operation]; gated && state.Plan != required {
		return models.PlanState{}, models.NewError(models.KindPlanRequired,
			"This feature is only available for premium subscriptions")
	}
	return state, nil
}

// finishCreation runs steps 4-5: persist the row, then best-effort event
// publishing, feed invalidation and usage accounting. The insert and
// everything after it run on a detached context so a client disconnect
// after a successful upstream call cannot leave a paid result unrecorded.
func (s *CreationService) finishCreation(ctx context.Context, state models.PlanState, c models.NewCreation) error {
	ctx = context.WithoutCancel(ctx)

	id, err := s.creations.Insert(ctx, c)
	if err != nil {
		return err
	}
	creationsTotal.WithLabelValues(c.Type).Inc()

	if s.events != nil {
		event := models.CreationEvent{ID: id, UserID: c.UserID, Type: c.Type, Publish: c.Publish}
		if err := s.events.PublishCreation(event); err != nil {
			slog.Warn("Failed to publish creation event", "creation_id", id, "error", err)
		}
	}
	if c.Publish && s.feed != nil {
		s.feed.Invalidate(ctx)
	}

	if !state.Premium() {
		if err := s.plans.IncrementUsage(ctx, state.UserID, state.FreeUsage); err != nil {
			slog.Warn("Failed to increment free usage", "user_id", state.UserID, "error", err)
		}
	}
	return nil
}

// GenerateArticle produces a long-form article bounded by length tokens.
func (s *CreationService) GenerateArticle(ctx context.Context, userID, prompt string, length int) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", models.NewError(models.KindInvalidInput, "Prompt is required.")
	}
	if length <= 0 {
		return "", models.NewError(models.KindInvalidInput, "A positive article length is required.")
	}

	state, err := s.resolvePlan(ctx, userID, OpGenerateArticle)
	if err != nil {
		return "", err
	}

	content, err := s.texts.GenerateText(ctx, "", prompt, length, 0.7)
	if err != nil {
		upstreamErrorsTotal.WithLabelValues("gemini").Inc()
		return "", err
	}

	err = s.finishCreation(ctx, state, models.NewCreation{
		UserID:  userID,
		Prompt:  prompt,
		Content: content,
		Type:    models.TypeArticle,
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

// GenerateBlogTitle produces title suggestions with a fixed token budget.
func (s *CreationService) GenerateBlogTitle(ctx context.Context, userID, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", models.NewError(models.KindInvalidInput, "Prompt is required.")
	}

	state, err := s.resolvePlan(ctx, userID, OpGenerateBlogTitle)
	if err != nil {
		return "", err
	}

	content, err := s.texts.GenerateText(ctx, "", prompt, blogTitleTokenBudget, 0.7)
	if err != nil {
		upstreamErrorsTotal.WithLabelValues("gemini").Inc()
		return "", err
	}

	err = s.finishCreation(ctx, state, models.NewCreation{
		UserID:  userID,
		Prompt:  prompt,
		Content: content,
		Type:    models.TypeBlogTitle,
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

// GenerateImage renders the prompt, hosts the result and returns its URL.
// publish marks the creation for the community feed.
func (s *CreationService) GenerateImage(ctx context.Context, userID, prompt string, publish bool) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", models.NewError(models.KindInvalidInput, "Prompt is required.")
	}

	state, err := s.resolvePlan(ctx, userID, OpGenerateImage)
	if err != nil {
		return "", err
	}

	imageBytes, err := s.images.GenerateImage(ctx, prompt)
	if err != nil {
		upstreamErrorsTotal.WithLabelValues("clipdrop").Inc()
		return "", err
	}

	uploaded, err := s.store.Upload(ctx, media.BytesSource(imageBytes), "generated", "")
	if err != nil {
		upstreamErrorsTotal.WithLabelValues("cloudinary").Inc()
		return "", err
	}

	err = s.finishCreation(ctx, state, models.NewCreation{
		UserID:  userID,
		Prompt:  prompt,
		Content: uploaded.URL,
		Type:    models.TypeImage,
		Publish: publish,
	})
	if err != nil {
		return "", err
	}
	return uploaded.URL, nil
}

// RemoveBackground uploads the image with a background-removal transform.
func (s *CreationService) RemoveBackground(ctx context.Context, userID string, image media.Source) (string, error) {
	if len(image.Bytes) == 0 && image.Path == "" {
		return "", models.NewError(models.KindInvalidInput, "Image file is required.")
	}

	state, err := s.resolvePlan(ctx, userID, OpRemoveBackground)
	if err != nil {
		return "", err
	}

	uploaded, err := s.store.Upload(ctx, image, "remove-bg", media.TransformBackgroundRemoval)
	if err != nil {
		upstreamErrorsTotal.WithLabelValues("cloudinary").Inc()
		return "", err
	}

	err = s.finishCreation(ctx, state, models.NewCreation{
		UserID:  userID,
		Prompt:  "Remove Background from image",
		Content: uploaded.URL,
		Type:    models.TypeRemoveBackground,
	})
	if err != nil {
		return "", err
	}
	return uploaded.URL, nil
}

// RemoveObject uploads the image untouched, then builds a delivery URL with
// a named object-removal transform. No second upload.
func (s *CreationService) RemoveObject(ctx context.Context, userID string, image media.Source, object string) (string, error) {
	if len(image.Bytes) == 0 && image.Path == "" {
		return "", models.NewError(models.KindInvalidInput, "Image file is required.")
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return "", models.NewError(models.KindInvalidInput, "Object name is required.")
	}

	state, err := s.resolvePlan(ctx, userID, OpRemoveObject)
	if err != nil {
		return "", err
	}

	uploaded, err := s.store.Upload(ctx, image, "remove-object", "")
	if err != nil {
		upstreamErrorsTotal.WithLabelValues("cloudinary").Inc()
		return "", err
	}
	imageURL, err := s.store.TransformedURL(uploaded.AssetID, media.RemoveObjectTransform(object))
	if err != nil {
		return "", err
	}

	err = s.finishCreation(ctx, state, models.NewCreation{
		UserID:  userID,
		Prompt:  fmt.Sprintf("Remove %s from image", object),
		Content: imageURL,
		Type:    models.TypeRemoveObject,
	})
	if err != nil {
		return "", err
	}
	return imageURL, nil
}

// ReviewResume extracts the resume text and asks the reviewer model for
// Markdown feedback. Unreadable documents are rejected before any paid call.
func (s *CreationService) ReviewResume(ctx context.Context, userID string, resume []byte) (string, error) {
	if len(resume) == 0 {
		return "", models.NewError(models.KindInvalidInput, "A valid PDF resume is required.")
	}

	state, err := s.resolvePlan(ctx, userID, OpReviewResume)
	if err != nil {
		return "", err
	}

	text, err := s.extract(resume)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if len(text) < minResumeTextLen {
		return "", models.NewError(models.KindUnreadableDocument, "Resume text is too short or unreadable.")
	}

	content, err := s.texts.GenerateText(ctx, resumeSystemPrompt,
		"Review this resume:\n\n"+text, resumeTokenBudget, 0.4)
	if err != nil {
		upstreamErrorsTotal.WithLabelValues("gemini").Inc()
		return "", err
	}

	err = s.finishCreation(ctx, state, models.NewCreation{
		UserID:  userID,
		Prompt:  "Resume Review Analysis",
		Content: content,
		Type:    models.TypeResumeReview,
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

// UserCreations lists the caller's creations, newest first.
func (s *CreationService) UserCreations(ctx context.Context, userID string) ([]models.Creation, error) {
	return s.creations.ListByOwner(ctx, userID)
}

// PublishedCreations lists the community feed, served from the Redis cache
// when warm.
func (s *CreationService) PublishedCreations(ctx context.Context) ([]models.Creation, error) {
	if s.feed != nil {
		if creations, ok := s.feed.Get(ctx); ok {
			return creations, nil
		}
	}
	creations, err := s.creations.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	if s.feed != nil {
		s.feed.Set(ctx, creations)
	}
	return creations, nil
}

// ToggleLike flips the caller's like on a creation and reports the outcome.
func (s *CreationService) ToggleLike(ctx context.Context, userID string, id int) (string, error) {
	if id <= 0 {
		return "", models.NewError(models.KindInvalidInput, "Creation id is required.")
	}
	liked, err := s.creations.ToggleLike(ctx, id, userID)
	if err != nil {
		return "", err
	}
	if s.feed != nil {
		s.feed.Invalidate(ctx)
	}
	if liked {
		return "Creation Liked", nil
	}
	return "Creation unliked", nil
}
