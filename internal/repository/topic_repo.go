package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/kanasu-ecd/kanasu-go-api/internal/models"
)

// TopicRepository defines data operations for topics and questions.
type TopicRepository interface {
	Create(ctx context.Context, topic *models.Topic) error
	List(ctx context.Context) ([]models.Topic, error)
	GetByID(ctx context.Context, id string) (models.Topic, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.Topic, error)
	Update(ctx context.Context, topic *models.Topic) error
	Delete(ctx context.Context, id string) error

	CreateQuestion(ctx context.Context, question *models.Question) error
	GetQuestion(ctx context.Context, id string) (models.Question, error)
	ListQuestionsByTopic(ctx context.Context, topicID string) ([]models.Question, error)
}

type topicRepository struct {
	db *gorm.DB
}

// NewTopicRepository instantiates the repository.
func NewTopicRepository(db *gorm.DB) TopicRepository {
	return &topicRepository{db: db}
}

func (r *topicRepository) Create(ctx context.Context, topic *models.Topic) error {
	return r.db.WithContext(ctx).Create(topic).Error
}

func (r *topicRepository) List(ctx context.Context) ([]models.Topic, error) {
	var topics []models.Topic
	if err := r.db.WithContext(ctx).
		Preload("Questions").
		Order("name ASC").
		Find(&topics).Error; err != nil {
		return nil, err
	}

	return topics, nil
}

func (r *topicRepository) GetByID(ctx context.Context, id string) (models.Topic, error) {
	var topic models.Topic
	if err := r.db.WithContext(ctx).
		Preload("Questions").
		Where("id = ?", id).
		First(&topic).Error; err != nil {
		return models.Topic{}, err
	}

	return topic, nil
}

func (r *topicRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Topic, error) {
	if len(ids) == 0 {
		return []models.Topic{}, nil
	}

	var topics []models.Topic
	if err := r.db.WithContext(ctx).
		Preload("Questions").
		Where("id IN ?", ids).
		Find(&topics).Error; err != nil {
		return nil, err
	}

	return topics, nil
}

func (r *topicRepository) Update(ctx context.Context, topic *models.Topic) error {
	return r.db.WithContext(ctx).Save(topic).Error
}

func (r *topicRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Topic{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *topicRepository) CreateQuestion(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).Create(question).Error
}

func (r *topicRepository) GetQuestion(ctx context.Context, id string) (models.Question, error) {
	var question models.Question
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&question).Error; err != nil {
		return models.Question{}, err
	}

	return question, nil
}

func (r *topicRepository) ListQuestionsByTopic(ctx context.Context, topicID string) ([]models.Question, error) {
	var questions []models.Question
	if err := r.db.WithContext(ctx).
		Where("topic_id = ?", topicID).
		Order("created_at ASC").
		Find(&questions).Error; err != nil {
		return nil, err
	}

	return questions, nil
}
