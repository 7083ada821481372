package services

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "bukukas/internal/errors"
	"bukukas/internal/models"
	"bukukas/internal/money"
	"bukukas/internal/policy"
)

// defaultGroups are created for the caller the first time options are requested
// and no active group exists.
var defaultGroups = []models.TransactionGroup{
	{Name: "Keuangan Pribadi", Description: "Kelompok untuk transaksi keuangan pribadi", Color: "#3B82F6"},
	{Name: "Proyek Freelance", Description: "Kelompok untuk transaksi proyek freelance", Color: "#10B981"},
	{Name: "Usaha Sampingan", Description: "Kelompok untuk transaksi usaha sampingan", Color: "#F59E0B"},
}

// groupService handles transaction group business logic.
type groupService struct {
	db *gorm.DB
}

// NewGroupService creates a new GroupServicer.
func NewGroupService(db *gorm.DB) GroupServicer {
	return &groupService{db: db}
}

// ListGroups returns active groups by name, each with statistics over the
// transactions the actor can see.
func (s *groupService) ListGroups(actor policy.Actor) ([]GroupSummary, error) {
	var groups []models.TransactionGroup
	if err := s.groups(actor).Where("is_active = ?", true).Order("name ASC").Find(&groups).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	stats, err := s.statistics(actor, "")
	if err != nil {
		return nil, err
	}

	out := make([]GroupSummary, 0, len(groups))
	for _, g := range groups {
		out = append(out, summarize(g, stats[g.ID]))
	}
	return out, nil
}

// GetGroupOptions returns active groups for pickers, seeding the defaults
// when none exist.
func (s *groupService) GetGroupOptions(actor policy.Actor) ([]models.TransactionGroup, error) {
	groups, err := s.activeOptions(actor)
	if err != nil || len(groups) > 0 {
		return groups, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, d := range defaultGroups {
			group := d
			group.Type = models.GroupTypeUniversal
			group.IsActive = true
			group.CreatedBy = actor.ID
			if err := tx.Omit(clause.Associations).Create(&group).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.activeOptions(actor)
}

func (s *groupService) activeOptions(actor policy.Actor) ([]models.TransactionGroup, error) {
	var groups []models.TransactionGroup
	if err := s.groups(actor).Where("is_active = ?", true).Order("name ASC").Find(&groups).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if groups == nil {
		groups = []models.TransactionGroup{}
	}
	return groups, nil
}

// GetGroupByID returns a group with its statistics and the actor's
// transactions in it, newest first.
func (s *groupService) GetGroupByID(actor policy.Actor, id string) (*GroupDetail, error) {
	group, err := s.load(actor, id)
	if err != nil {
		return nil, err
	}

	stats, err := s.statistics(actor, group.ID)
	if err != nil {
		return nil, err
	}

	var transactions []models.Transaction
	if err := policy.Scope(actor, policy.ResourceTransaction)(s.db.Model(&models.Transaction{})).
		Where("transactions.transaction_group_id = ?", group.ID).
		Preload("User", selectUserSummary).
		Order("transactions.created_at DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}

	return &GroupDetail{
		GroupSummary: summarize(*group, stats[group.ID]),
		Transactions: transactions,
	}, nil
}

// CreateGroup creates a universal group owned by the actor.
func (s *groupService) CreateGroup(actor policy.Actor, input GroupInput) (*models.TransactionGroup, error) {
	name := strings.TrimSpace(input.Name)
	if err := s.ensureNameAvailable(name, ""); err != nil {
		return nil, err
	}

	group := &models.TransactionGroup{
		Name:        name,
		Description: input.Description,
		Type:        input.Type,
		Color:       input.Color,
		IsActive:    true,
		CreatedBy:   actor.ID,
	}
	fillGroupDefaults(group)
	if input.IsActive != nil {
		group.IsActive = *input.IsActive
	}

	if err := s.db.Omit(clause.Associations).Create(group).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return group, nil
}

// UpdateGroup changes a group. Only its creator or an admin may do so, and
// the Simpaskor group keeps its name.
func (s *groupService) UpdateGroup(actor policy.Actor, id string, input GroupInput) (*models.TransactionGroup, error) {
	group, err := s.load(actor, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if err := policy.CanUpdateGroup(actor, group, name); err != nil {
		return nil, err
	}
	if err := s.ensureNameAvailable(name, group.ID); err != nil {
		return nil, err
	}

	group.Name = name
	group.Description = input.Description
	group.Type = input.Type
	group.Color = input.Color
	fillGroupDefaults(group)
	if input.IsActive != nil {
		group.IsActive = *input.IsActive
	}

	if err := s.db.Omit(clause.Associations).Save(group).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return group, nil
}

// DeleteGroup removes a group that no transaction references.
func (s *groupService) DeleteGroup(actor policy.Actor, id string) error {
	group, err := s.load(actor, id)
	if err != nil {
		return err
	}
	if err := policy.CanDeleteGroup(actor, group); err != nil {
		return err
	}

	var count int64
	if err := s.db.Model(&models.Transaction{}).Where("transaction_group_id = ?", group.ID).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrGroupInUse
	}

	if err := s.db.Delete(group).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// EnsureSimpaskorGroup returns the Simpaskor group, creating it when missing.
func (s *groupService) EnsureSimpaskorGroup(creatorID string) (*models.TransactionGroup, error) {
	var group models.TransactionGroup
	err := s.db.Where("LOWER(name) = LOWER(?)", models.SimpaskorGroupName).
		Attrs(models.TransactionGroup{
			Name:        models.SimpaskorGroupName,
			Description: "Kelompok sistem untuk pembayaran Hayabusa",
			Type:        models.GroupTypeUniversal,
			Color:       models.DefaultGroupColor,
			IsActive:    true,
			CreatedBy:   creatorID,
		}).
		FirstOrCreate(&group).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &group, nil
}

func (s *groupService) groups(actor policy.Actor) *gorm.DB {
	return policy.Scope(actor, policy.ResourceTransactionGroup)(s.db.Model(&models.TransactionGroup{}))
}

func (s *groupService) load(actor policy.Actor, id string) (*models.TransactionGroup, error) {
	group, err := findByID[models.TransactionGroup](s.db, id, apperrors.ErrGroupNotFound)
	if err != nil {
		return nil, err
	}
	if !policy.CanAccessRow(actor, policy.ResourceTransactionGroup, group.CreatedBy) {
		return nil, apperrors.ErrForbidden
	}
	return group, nil
}

// ensureNameAvailable enforces case-insensitive uniqueness among live groups.
func (s *groupService) ensureNameAvailable(name, exceptID string) error {
	q := s.db.Model(&models.TransactionGroup{}).Where("LOWER(name) = LOWER(?)", name)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.Field("name", "The name has already been taken.")
	}
	return nil
}

type groupStatsRow struct {
	TransactionGroupID string
	TotalIncome        int64
	TotalExpense       int64
	TransactionCount   int64
	LastTransaction    scannedTime
}

// statistics totals the actor's visible transactions per group. An empty
// groupID covers every group.
func (s *groupService) statistics(actor policy.Actor, groupID string) (map[string]GroupStatistics, error) {
	q := policy.Scope(actor, policy.ResourceTransaction)(s.db.Model(&models.Transaction{})).
		Select("transactions.transaction_group_id, "+totalsSelect+", MAX(transactions.created_at) AS last_transaction",
			models.TransactionTypeIncome, models.TransactionTypeExpense).
		Where("transactions.transaction_group_id IS NOT NULL").
		Group("transactions.transaction_group_id")
	if groupID != "" {
		q = q.Where("transactions.transaction_group_id = ?", groupID)
	}

	var rows []groupStatsRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	out := make(map[string]GroupStatistics, len(rows))
	for _, r := range rows {
		out[r.TransactionGroupID] = GroupStatistics{
			TotalIncome:      money.Amount(r.TotalIncome),
			TotalExpense:     money.Amount(r.TotalExpense),
			NetAmount:        money.Amount(r.TotalIncome - r.TotalExpense),
			TransactionCount: r.TransactionCount,
			LastTransaction:  r.LastTransaction.Ptr(),
		}
	}
	return out, nil
}

func summarize(g models.TransactionGroup, stats GroupStatistics) GroupSummary {
	return GroupSummary{TransactionGroup: g, IsSimpaskor: g.IsSimpaskor(), Statistics: stats}
}

func fillGroupDefaults(g *models.TransactionGroup) {
	if g.Type == "" {
		g.Type = models.GroupTypeUniversal
	}
	if g.Color == "" {
		g.Color = models.DefaultGroupColor
	}
}
