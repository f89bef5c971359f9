package repository

import (
	"context"
	"errors"
	"time"

	repo "toyshop/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// kv_entries の1行
type KVEntry struct {
	Key       string    `gorm:"primaryKey;type:varchar(255)"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`
}

func (KVEntry) TableName() string { return "kv_entries" }

type KVGormRepository struct {
	db *gorm.DB
}

// DI
func NewKVGormRepository(db *gorm.DB) *KVGormRepository {
	return &KVGormRepository{db: db}
}

// テーブル作成
func (r *KVGormRepository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&KVEntry{})
}

func (r *KVGormRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var e KVEntry
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(e.Value), true, nil
}

func (r *KVGormRepository) WithinTx(ctx context.Context, fn func(w repo.KVWriter) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//writerはtxを持ったDBで作る
		return fn(&kvGormWriter{tx: tx})
	})
}

type kvGormWriter struct {
	tx *gorm.DB
}

// 同じキーは上書き
func (w *kvGormWriter) Put(ctx context.Context, key string, value []byte) error {
	e := KVEntry{Key: key, Value: string(value), UpdatedAt: time.Now()}
	return w.tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&e).Error
}

func (w *kvGormWriter) Delete(ctx context.Context, key string) error {
	return w.tx.WithContext(ctx).Where("key = ?", key).Delete(&KVEntry{}).Error
}
