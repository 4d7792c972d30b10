package store

import (
	"database/sql"
	"errors"

	"gorm.io/gorm"

	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/models"
	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/orders"
	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/stats"
)

// Gorm implementa orders.OrderStore, orders.CatalogStore e stats.Store
// sobre a base de dados Postgres.
type Gorm struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

// ---- orders.OrderStore ----

func (s *Gorm) MaxSequenceForDate(dateKey string) (int, error) {
	var max sql.NullInt64
	err := s.db.Model(&models.Order{}).
		Select("MAX(daily_sequence_number)").
		Where("created_date_key = ?", dateKey).
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64), nil
}

func (s *Gorm) InsertOrderHeader(o *models.Order) error {
	err := s.db.Create(o).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// índice único (created_date_key, daily_sequence_number): outro
		// registo concorrente ganhou este número
		return orders.ErrDuplicateSequence
	}
	return err
}

func (s *Gorm) InsertOrderLines(lines []models.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	return s.db.Create(&lines).Error
}

func (s *Gorm) UpdateOrderState(orderID uint, state models.OrderState) error {
	return s.db.Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("state", state).Error
}

func (s *Gorm) SetSupersededBy(orderID, successorID uint) error {
	return s.db.Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("superseded_by_id", successorID).Error
}

func (s *Gorm) GetOrder(orderID uint) (*models.Order, error) {
	var o models.Order
	err := s.db.Preload("Lines").First(&o, "id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, orders.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ---- orders.CatalogStore ----

func (s *Gorm) GetItem(itemID uint) (*models.Item, error) {
	var item models.Item
	err := s.db.First(&item, "id = ?", itemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, orders.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ---- stats.Store ----

func (s *Gorm) GetEvent(eventID uint) (*models.Event, error) {
	var ev models.Event
	err := s.db.First(&ev, "id = ?", eventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, stats.ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

func (s *Gorm) QueryOrders(eventID uint, state *models.OrderState) ([]models.Order, error) {
	dbq := s.db.Model(&models.Order{}).Where("event_id = ?", eventID)
	if state != nil {
		dbq = dbq.Where("state = ?", *state)
	}
	var list []models.Order
	if err := dbq.Order("created_date_key asc, daily_sequence_number asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Gorm) QueryOrderLines(orderIDs []uint) ([]models.OrderLine, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	var lines []models.OrderLine
	if err := s.db.Where("order_id IN ?", orderIDs).Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *Gorm) ListItems() ([]models.Item, error) {
	var items []models.Item
	if err := s.db.Order("name asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
