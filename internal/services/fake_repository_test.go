package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/prodbrandon/CSE360HW4-sub000/internal/models"
	"github.com/prodbrandon/CSE360HW4-sub000/internal/repositories"
)

// fakeRepository is an in-memory repositories.Repository used by the service
// tests. It preserves the ordering and compare-and-set semantics of the real
// PostgreSQL layer so services can be exercised without a database.
type fakeRepository struct {
	mu sync.Mutex

	users    map[uint]*models.User
	invites  map[string]*models.InvitationCode
	otps     []*models.OneTimePassword
	question map[uint]*models.Question
	answers  map[uint]*models.Answer
	reviewer map[uint]*models.Reviewer
	reviews  map[uint]*models.Review
	requests map[uint]*models.ReviewerRequest
	messages map[uint]*models.Message

	nextID uint
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		users:    make(map[uint]*models.User),
		invites:  make(map[string]*models.InvitationCode),
		question: make(map[uint]*models.Question),
		answers:  make(map[uint]*models.Answer),
		reviewer: make(map[uint]*models.Reviewer),
		reviews:  make(map[uint]*models.Review),
		requests: make(map[uint]*models.ReviewerRequest),
		messages: make(map[uint]*models.Message),
	}
}

func (f *fakeRepository) nextIDLocked() uint {
	f.nextID++
	return f.nextID
}

func (f *fakeRepository) User() repositories.UserRepository { return &fakeUserRepo{f} }

func (f *fakeRepository) Question() repositories.QuestionRepository { return &fakeQuestionRepo{f} }

func (f *fakeRepository) Answer() repositories.AnswerRepository { return &fakeAnswerRepo{f} }

func (f *fakeRepository) Reviewer() repositories.ReviewerRepository { return &fakeReviewerRepo{f} }

func (f *fakeRepository) Review() repositories.ReviewRepository { return &fakeReviewRepo{f} }

func (f *fakeRepository) Message() repositories.MessageRepository { return &fakeMessageRepo{f} }

func (f *fakeRepository) ReviewerRequest() repositories.ReviewerRequestRepository {
	return &fakeRequestRepo{f}
}

// WithTransaction runs fn against the same store. Rollback is not simulated;
// tests assert on the error path before any writes happen.
func (f *fakeRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(f)
}

func (f *fakeRepository) Ping(ctx context.Context) error { return nil }

func (f *fakeRepository) Close() error { return nil }

// ===== USERS =====

type fakeUserRepo struct{ f *fakeRepository }

func (r *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	user.ID = r.f.nextIDLocked()
	user.CreatedAt = time.Now()
	stored := *user
	r.f.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	user, ok := r.f.users[id]
	if !ok {
		return nil, repositories.NewNotFoundError("user", id)
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByUserName(ctx context.Context, tx *gorm.DB, userName string) (*models.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, user := range r.f.users {
		if user.UserName == userName {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repositories.NewNotFoundError("user", 0)
}

func (r *fakeUserRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	var matched []*models.User
	for _, user := range r.f.users {
		if filters.Role != nil && !user.HasRole(*filters.Role) {
			continue
		}
		if filters.Query != "" && !strings.Contains(strings.ToLower(user.UserName), strings.ToLower(filters.Query)) {
			continue
		}
		copied := *user
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].UserName < matched[j].UserName })

	total := int64(len(matched))
	matched = paginate(matched, filters.Limit, filters.Offset)
	return matched, total, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.users[user.ID]; !ok {
		return repositories.NewNotFoundError("user", user.ID)
	}
	stored := *user
	r.f.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.users[id]; !ok {
		return repositories.NewNotFoundError("user", id)
	}
	delete(r.f.users, id)
	return nil
}

func (r *fakeUserRepo) CountAdmins(ctx context.Context, tx *gorm.DB, excludeUserID uint) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var count int64
	for _, user := range r.f.users {
		if user.ID != excludeUserID && user.HasRole(models.RoleAdmin) {
			count++
		}
	}
	return count, nil
}

func (r *fakeUserRepo) HasAuthoredContent(ctx context.Context, tx *gorm.DB, userID uint) (bool, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, question := range r.f.question {
		if question.AuthorID == userID {
			return true, nil
		}
	}
	for _, answer := range r.f.answers {
		if answer.AuthorID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) CreateInvitation(ctx context.Context, tx *gorm.DB, invite *models.InvitationCode) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	invite.ID = r.f.nextIDLocked()
	invite.CreatedAt = time.Now()
	stored := *invite
	r.f.invites[invite.Code] = &stored
	return nil
}

func (r *fakeUserRepo) ConsumeInvitation(ctx context.Context, tx *gorm.DB, code string, usedBy uint) (*models.InvitationCode, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	invite, ok := r.f.invites[code]
	if !ok || invite.UsedBy != nil {
		return nil, repositories.NewNotFoundError("invitation code", 0)
	}
	now := time.Now()
	invite.UsedBy = &usedBy
	invite.UsedAt = &now
	copied := *invite
	return &copied, nil
}

func (r *fakeUserRepo) CreateOneTimePassword(ctx context.Context, tx *gorm.DB, otp *models.OneTimePassword) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	otp.ID = r.f.nextIDLocked()
	otp.CreatedAt = time.Now()
	stored := *otp
	r.f.otps = append(r.f.otps, &stored)
	return nil
}

func (r *fakeUserRepo) ConsumeOneTimePassword(ctx context.Context, tx *gorm.DB, userID uint, code string) (bool, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, otp := range r.f.otps {
		if otp.UserID == userID && otp.Code == code && !otp.Consumed {
			otp.Consumed = true
			return true, nil
		}
	}
	return false, nil
}

// ===== QUESTIONS =====

type fakeQuestionRepo struct{ f *fakeRepository }

func (r *fakeQuestionRepo) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	question.ID = r.f.nextIDLocked()
	question.CreatedAt = time.Now()
	stored := *question
	r.f.question[question.ID] = &stored
	return nil
}

func (r *fakeQuestionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	question, ok := r.f.question[id]
	if !ok {
		return nil, repositories.NewNotFoundError("question", id)
	}
	copied := *question
	return &copied, nil
}

func (r *fakeQuestionRepo) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.question[question.ID]; !ok {
		return repositories.NewNotFoundError("question", question.ID)
	}
	stored := *question
	r.f.question[question.ID] = &stored
	return nil
}

func (r *fakeQuestionRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.question[id]; !ok {
		return repositories.NewNotFoundError("question", id)
	}
	delete(r.f.question, id)
	return nil
}

func (r *fakeQuestionRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	matched := r.matchLocked(func(q *models.Question) bool { return true }, filters)
	total := int64(len(matched))
	return paginate(matched, filters.Limit, filters.Offset), total, nil
}

func (r *fakeQuestionRepo) Search(ctx context.Context, tx *gorm.DB, term string, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	lower := strings.ToLower(term)
	matched := r.matchLocked(func(q *models.Question) bool {
		return strings.Contains(strings.ToLower(q.Title), lower) || strings.Contains(strings.ToLower(q.Content), lower)
	}, filters)
	total := int64(len(matched))
	return paginate(matched, filters.Limit, filters.Offset), total, nil
}

func (r *fakeQuestionRepo) matchLocked(pred func(*models.Question) bool, filters repositories.QuestionFilters) []*models.Question {
	var matched []*models.Question
	for _, question := range r.f.question {
		if filters.AuthorID != nil && question.AuthorID != *filters.AuthorID {
			continue
		}
		if filters.Resolved != nil && question.Resolved != *filters.Resolved {
			continue
		}
		if !pred(question) {
			continue
		}
		copied := *question
		matched = append(matched, &copied)
	}
	// Newest first, matching the default sort of the real layer.
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	return matched
}

func (r *fakeQuestionRepo) SetResolution(ctx context.Context, tx *gorm.DB, questionID uint, answerID *uint, resolved bool) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	question, ok := r.f.question[questionID]
	if !ok {
		return repositories.NewNotFoundError("question", questionID)
	}
	question.Resolved = resolved
	question.ResolvedAnswerID = answerID
	return nil
}

func (r *fakeQuestionRepo) ClearResolutionByAnswer(ctx context.Context, tx *gorm.DB, answerID uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, question := range r.f.question {
		if question.ResolvedAnswerID != nil && *question.ResolvedAnswerID == answerID {
			question.Resolved = false
			question.ResolvedAnswerID = nil
		}
	}
	return nil
}

// ===== ANSWERS =====

type fakeAnswerRepo struct{ f *fakeRepository }

func (r *fakeAnswerRepo) Create(ctx context.Context, tx *gorm.DB, answer *models.Answer) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	answer.ID = r.f.nextIDLocked()
	answer.CreatedAt = time.Now()
	stored := *answer
	r.f.answers[answer.ID] = &stored
	return nil
}

func (r *fakeAnswerRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Answer, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	answer, ok := r.f.answers[id]
	if !ok {
		return nil, repositories.NewNotFoundError("answer", id)
	}
	copied := *answer
	return &copied, nil
}

func (r *fakeAnswerRepo) Update(ctx context.Context, tx *gorm.DB, answer *models.Answer) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.answers[answer.ID]; !ok {
		return repositories.NewNotFoundError("answer", answer.ID)
	}
	stored := *answer
	r.f.answers[answer.ID] = &stored
	return nil
}

func (r *fakeAnswerRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.answers[id]; !ok {
		return repositories.NewNotFoundError("answer", id)
	}
	delete(r.f.answers, id)
	return nil
}

func (r *fakeAnswerRepo) GetByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) ([]*models.Answer, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var matched []*models.Answer
	for _, answer := range r.f.answers {
		if answer.QuestionID == questionID {
			copied := *answer
			matched = append(matched, &copied)
		}
	}
	// Oldest first, matching posting order.
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return matched, nil
}

func (r *fakeAnswerRepo) GetIDsByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) ([]uint, error) {
	answers, err := r.GetByQuestion(ctx, tx, questionID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(answers))
	for _, answer := range answers {
		ids = append(ids, answer.ID)
	}
	return ids, nil
}

func (r *fakeAnswerRepo) DeleteByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for id, answer := range r.f.answers {
		if answer.QuestionID == questionID {
			delete(r.f.answers, id)
		}
	}
	return nil
}

func (r *fakeAnswerRepo) SetClarification(ctx context.Context, tx *gorm.DB, id uint, flag bool) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	answer, ok := r.f.answers[id]
	if !ok {
		return repositories.NewNotFoundError("answer", id)
	}
	answer.NeedsClarification = flag
	return nil
}

// ===== REVIEWERS =====

type fakeReviewerRepo struct{ f *fakeRepository }

func (r *fakeReviewerRepo) Create(ctx context.Context, tx *gorm.DB, reviewer *models.Reviewer) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	reviewer.ID = r.f.nextIDLocked()
	stored := *reviewer
	r.f.reviewer[reviewer.ID] = &stored
	return nil
}

func (r *fakeReviewerRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Reviewer, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	reviewer, ok := r.f.reviewer[id]
	if !ok {
		return nil, repositories.NewNotFoundError("reviewer", id)
	}
	copied := *reviewer
	return &copied, nil
}

func (r *fakeReviewerRepo) GetByUser(ctx context.Context, tx *gorm.DB, userID uint) (*models.Reviewer, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, reviewer := range r.f.reviewer {
		if reviewer.UserID == userID {
			copied := *reviewer
			return &copied, nil
		}
	}
	return nil, repositories.NewNotFoundError("reviewer", 0)
}

func (r *fakeReviewerRepo) UpdateWeight(ctx context.Context, tx *gorm.DB, id uint, weight float64) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	reviewer, ok := r.f.reviewer[id]
	if !ok {
		return repositories.NewNotFoundError("reviewer", id)
	}
	reviewer.Weight = weight
	return nil
}

func (r *fakeReviewerRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.reviewer[id]; !ok {
		return repositories.NewNotFoundError("reviewer", id)
	}
	delete(r.f.reviewer, id)
	return nil
}

// ===== REVIEWS =====

type fakeReviewRepo struct{ f *fakeRepository }

func (r *fakeReviewRepo) Create(ctx context.Context, tx *gorm.DB, review *models.Review) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	review.ID = r.f.nextIDLocked()
	review.CreatedAt = time.Now()
	stored := *review
	r.f.reviews[review.ID] = &stored
	return nil
}

func (r *fakeReviewRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Review, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	review, ok := r.f.reviews[id]
	if !ok {
		return nil, repositories.NewNotFoundError("review", id)
	}
	copied := *review
	return &copied, nil
}

func (r *fakeReviewRepo) UpdateMatched(ctx context.Context, tx *gorm.DB, review *models.Review) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	stored, ok := r.f.reviews[review.ID]
	if !ok || stored.ReviewerID != review.ReviewerID ||
		!uintPtrEqual(stored.QuestionID, review.QuestionID) ||
		!uintPtrEqual(stored.AnswerID, review.AnswerID) {
		return 0, nil
	}
	stored.Content = review.Content
	return 1, nil
}

func (r *fakeReviewRepo) DeleteMatched(ctx context.Context, tx *gorm.DB, id, reviewerID uint, questionID, answerID *uint) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	stored, ok := r.f.reviews[id]
	if !ok || stored.ReviewerID != reviewerID ||
		!uintPtrEqual(stored.QuestionID, questionID) ||
		!uintPtrEqual(stored.AnswerID, answerID) {
		return 0, nil
	}
	delete(r.f.reviews, id)
	return 1, nil
}

func (r *fakeReviewRepo) Update(ctx context.Context, tx *gorm.DB, review *models.Review) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.reviews[review.ID]; !ok {
		return repositories.NewNotFoundError("review", review.ID)
	}
	stored := *review
	r.f.reviews[review.ID] = &stored
	return nil
}

func (r *fakeReviewRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.reviews[id]; !ok {
		return repositories.NewNotFoundError("review", id)
	}
	delete(r.f.reviews, id)
	return nil
}

func (r *fakeReviewRepo) GetByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) ([]*models.Review, error) {
	return r.collect(func(review *models.Review) bool {
		return review.QuestionID != nil && *review.QuestionID == questionID
	}), nil
}

func (r *fakeReviewRepo) GetByAnswer(ctx context.Context, tx *gorm.DB, answerID uint) ([]*models.Review, error) {
	return r.collect(func(review *models.Review) bool {
		return review.AnswerID != nil && *review.AnswerID == answerID
	}), nil
}

func (r *fakeReviewRepo) GetByReviewer(ctx context.Context, tx *gorm.DB, reviewerID uint) ([]*models.Review, error) {
	return r.collect(func(review *models.Review) bool {
		return review.ReviewerID == reviewerID
	}), nil
}

func (r *fakeReviewRepo) collect(pred func(*models.Review) bool) []*models.Review {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var matched []*models.Review
	for _, review := range r.f.reviews {
		if pred(review) {
			copied := *review
			matched = append(matched, &copied)
		}
	}
	// Newest first.
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	return matched
}

func (r *fakeReviewRepo) CountBySubject(ctx context.Context, tx *gorm.DB, reviewerID uint, questionID, answerID *uint) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var count int64
	for _, review := range r.f.reviews {
		if review.ReviewerID == reviewerID &&
			uintPtrEqual(review.QuestionID, questionID) &&
			uintPtrEqual(review.AnswerID, answerID) {
			count++
		}
	}
	return count, nil
}

func (r *fakeReviewRepo) DeleteByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for id, review := range r.f.reviews {
		if review.QuestionID != nil && *review.QuestionID == questionID {
			delete(r.f.reviews, id)
		}
	}
	return nil
}

func (r *fakeReviewRepo) DeleteByAnswers(ctx context.Context, tx *gorm.DB, answerIDs []uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for id, review := range r.f.reviews {
		for _, answerID := range answerIDs {
			if review.AnswerID != nil && *review.AnswerID == answerID {
				delete(r.f.reviews, id)
			}
		}
	}
	return nil
}

func (r *fakeReviewRepo) DeleteByReviewer(ctx context.Context, tx *gorm.DB, reviewerID uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for id, review := range r.f.reviews {
		if review.ReviewerID == reviewerID {
			delete(r.f.reviews, id)
		}
	}
	return nil
}

// ===== REVIEWER REQUESTS =====

type fakeRequestRepo struct{ f *fakeRepository }

func (r *fakeRequestRepo) Create(ctx context.Context, tx *gorm.DB, request *models.ReviewerRequest) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	request.ID = r.f.nextIDLocked()
	request.CreatedAt = time.Now()
	stored := *request
	r.f.requests[request.ID] = &stored
	return nil
}

func (r *fakeRequestRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ReviewerRequest, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	request, ok := r.f.requests[id]
	if !ok {
		return nil, repositories.NewNotFoundError("reviewer request", id)
	}
	copied := *request
	return &copied, nil
}

func (r *fakeRequestRepo) UpdateStatusIfPending(ctx context.Context, tx *gorm.DB, id uint, status models.RequestStatus, comments *string, reviewedBy uint) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	request, ok := r.f.requests[id]
	if !ok || request.Status != models.RequestPending {
		return 0, nil
	}
	now := time.Now()
	request.Status = status
	request.InstructorComments = comments
	request.ReviewedBy = &reviewedBy
	request.ReviewedAt = &now
	return 1, nil
}

func (r *fakeRequestRepo) ListPending(ctx context.Context, tx *gorm.DB) ([]*models.ReviewerRequest, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var matched []*models.ReviewerRequest
	for _, request := range r.f.requests {
		if request.Status == models.RequestPending {
			copied := *request
			matched = append(matched, &copied)
		}
	}
	// Oldest first, matching the review queue order.
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return matched, nil
}

func (r *fakeRequestRepo) GetByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.ReviewerRequest, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var matched []*models.ReviewerRequest
	for _, request := range r.f.requests {
		if request.UserID == userID {
			copied := *request
			matched = append(matched, &copied)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	return matched, nil
}

func (r *fakeRequestRepo) CountPendingByUser(ctx context.Context, tx *gorm.DB, userID uint) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var count int64
	for _, request := range r.f.requests {
		if request.UserID == userID && request.Status == models.RequestPending {
			count++
		}
	}
	return count, nil
}

// ===== MESSAGES =====

type fakeMessageRepo struct{ f *fakeRepository }

func (r *fakeMessageRepo) Create(ctx context.Context, tx *gorm.DB, message *models.Message) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	message.ID = r.f.nextIDLocked()
	message.CreatedAt = time.Now()
	stored := *message
	r.f.messages[message.ID] = &stored
	return nil
}

func (r *fakeMessageRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Message, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	message, ok := r.f.messages[id]
	if !ok {
		return nil, repositories.NewNotFoundError("message", id)
	}
	copied := *message
	return &copied, nil
}

func (r *fakeMessageRepo) GetForUser(ctx context.Context, tx *gorm.DB, userID uint, filters repositories.MessageFilters) ([]*models.Message, int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var matched []*models.Message
	for _, message := range r.f.messages {
		if message.SenderID != userID && message.ReceiverID != userID {
			continue
		}
		if filters.UnreadOnly && (message.ReceiverID != userID || message.IsRead) {
			continue
		}
		copied := *message
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	total := int64(len(matched))
	return paginate(matched, filters.Limit, filters.Offset), total, nil
}

func (r *fakeMessageRepo) GetUnreadForReceiver(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.Message, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var matched []*models.Message
	for _, message := range r.f.messages {
		if message.ReceiverID == userID && !message.IsRead {
			copied := *message
			matched = append(matched, &copied)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	return matched, nil
}

func (r *fakeMessageRepo) MarkReadIfReceiver(ctx context.Context, tx *gorm.DB, messageID, receiverID uint) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	message, ok := r.f.messages[messageID]
	if !ok || message.ReceiverID != receiverID {
		return 0, nil
	}
	message.IsRead = true
	return 1, nil
}

// ===== SHARED HELPERS =====

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func uintPtrEqual(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
