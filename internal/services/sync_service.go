package services

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/courseboard/api/internal/logger"
	"github.com/courseboard/api/internal/metrics"
	"github.com/courseboard/api/internal/models"
	"github.com/courseboard/api/internal/notify"
	"github.com/courseboard/api/internal/repository"
	"github.com/courseboard/api/internal/uow"
)

// SyncService drains a unit of work's dirty set and pushes a fresh,
// per-recipient course payload to everyone affected. Flushing is best
// effort: a recipient whose payload cannot be built or delivered is
// logged and skipped, never allowed to fail the request that caused
// the change.
type SyncService struct {
	contexts *ContextService
	courses  *CourseService
	users    repository.UserRepository
	notifier notify.Notifier
	log      *logrus.Entry
}

// NewSyncService creates a new SyncService.
func NewSyncService(
	contexts *ContextService,
	courses *CourseService,
	users repository.UserRepository,
	notifier notify.Notifier,
) *SyncService {
	return &SyncService{
		contexts: contexts,
		courses:  courses,
		users:    users,
		notifier: notifier,
		log:      logger.New("sync"),
	}
}

// Flush delivers one notification per dirty course per recipient and
// leaves the dirty set empty. Safe to call on a clean scope.
func (s *SyncService) Flush(scope *uow.Scope) {
	ids := scope.Dirty.Drain()
	for _, id := range ids {
		metrics.SyncFlushes.Inc()
		s.flushCourse(scope, id)
	}
}

func (s *SyncService) flushCourse(scope *uow.Scope, courseID int64) {
	course, err := s.courses.FromID(scope, courseID)
	if err != nil {
		s.log.WithError(err).WithField("course_id", courseID).Warn("skipping sync for unresolvable course")
		return
	}

	recipients, err := s.recipients(scope, course)
	if err != nil {
		s.log.WithError(err).WithField("course_id", courseID).Warn("skipping sync, cannot resolve recipients")
		return
	}

	for _, recipient := range recipients {
		ctx, err := s.contexts.Course(scope, course, recipient)
		if err != nil {
			metrics.SyncEmitFailures.Inc()
			s.log.WithError(err).WithFields(logrus.Fields{
				"course_id": courseID,
				"user_id":   recipient.ID,
			}).Warn("failed to build sync payload")
			continue
		}

		if err := s.notifier.Emit(recipient, "course", courseID, ctx); err != nil {
			metrics.SyncEmitFailures.Inc()
			s.log.WithError(err).WithFields(logrus.Fields{
				"course_id": courseID,
				"user_id":   recipient.ID,
			}).Warn("failed to deliver sync notification")
			continue
		}
		metrics.SyncEmits.Inc()
	}
}

// recipients returns every user who must hear about a change to the
// course: members of either role plus all site admins, deduplicated
// and ordered by id.
func (s *SyncService) recipients(scope *uow.Scope, course *models.Course) ([]models.User, error) {
	m, err := s.courses.Membership(scope, course)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]models.User, len(m.Professors)+len(m.Students))
	for id, user := range m.Professors {
		seen[id] = user
	}
	for id, user := range m.Students {
		seen[id] = user
	}

	admins, err := s.users.ListAdmins()
	if err != nil {
		return nil, err
	}
	for _, admin := range admins {
		seen[admin.ID] = admin
	}

	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	recipients := make([]models.User, 0, len(ids))
	for _, id := range ids {
		recipients = append(recipients, seen[id])
	}
	return recipients, nil
}
