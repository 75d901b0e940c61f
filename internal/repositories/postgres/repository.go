package postgres

import (
	"context"

	"github.com/dejoyjm/shreds-platform/internal/repositories"
	"gorm.io/gorm"
)

type gormRepository struct {
	db *gorm.DB

	tests       *TestPostgreSQL
	questions   *QuestionPostgreSQL
	candidates  *CandidatePostgreSQL
	assignments *AssignmentPostgreSQL
	sessions    *SessionPostgreSQL
	responses   *ResponsePostgreSQL
	reports     *ReportPostgreSQL
	proctoring  *ProctoringPostgreSQL
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return newGormRepository(db)
}

func newGormRepository(db *gorm.DB) *gormRepository {
	return &gormRepository{
		db:          db,
		tests:       &TestPostgreSQL{db: db},
		questions:   &QuestionPostgreSQL{db: db},
		candidates:  &CandidatePostgreSQL{db: db},
		assignments: &AssignmentPostgreSQL{db: db},
		sessions:    &SessionPostgreSQL{db: db},
		responses:   &ResponsePostgreSQL{db: db},
		reports:     &ReportPostgreSQL{db: db},
		proctoring:  &ProctoringPostgreSQL{db: db},
	}
}

func (r *gormRepository) Tests() repositories.TestRepository             { return r.tests }
func (r *gormRepository) Questions() repositories.QuestionRepository     { return r.questions }
func (r *gormRepository) Candidates() repositories.CandidateRepository   { return r.candidates }
func (r *gormRepository) Assignments() repositories.AssignmentRepository { return r.assignments }
func (r *gormRepository) Sessions() repositories.SessionRepository       { return r.sessions }
func (r *gormRepository) Responses() repositories.ResponseRepository     { return r.responses }
func (r *gormRepository) Reports() repositories.ReportRepository         { return r.reports }
func (r *gormRepository) Proctoring() repositories.ProctoringRepository  { return r.proctoring }

func (r *gormRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newGormRepository(tx))
	})
}

func (r *gormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
