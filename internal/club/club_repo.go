package club

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrClubNotFound   = errors.New("club not found")
	ErrMemberNotFound = errors.New("member not found")
	ErrAlreadyMember  = errors.New("already a member or pending")
)

type ClubRepository interface {
	CreateClub(c *Club) error
	GetClub(id uint) (*Club, error)
	ListClubs() ([]Club, error)
	CreateMember(m *ClubMember) error
	GetMember(clubID, userID uint) (*ClubMember, error)
	GetMemberByID(id uint) (*ClubMember, error)
	ListMembers(clubID uint) ([]ClubMember, error)
	UpdateMember(m *ClubMember) error
	// IsApprovedMember reports whether the user is an approved member of
	// the given club. Used by the guest gate.
	IsApprovedMember(clubID, userID uint) (bool, error)
	IsManager(clubID, userID uint) (bool, error)
}

type gormClubRepository struct {
	db *gorm.DB
}

func NewGormClubRepository(db *gorm.DB) ClubRepository {
	return &gormClubRepository{db: db}
}

func (r *gormClubRepository) CreateClub(c *Club) error {
	return r.db.Create(c).Error
}

func (r *gormClubRepository) GetClub(id uint) (*Club, error) {
	var c Club
	if err := r.db.First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *gormClubRepository) ListClubs() ([]Club, error) {
	var clubs []Club
	err := r.db.Order("created_at DESC").Find(&clubs).Error
	return clubs, err
}

func (r *gormClubRepository) CreateMember(m *ClubMember) error {
	return r.db.Create(m).Error
}

func (r *gormClubRepository) GetMember(clubID, userID uint) (*ClubMember, error) {
	var m ClubMember
	err := r.db.Where("club_id = ? AND user_id = ?", clubID, userID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *gormClubRepository) GetMemberByID(id uint) (*ClubMember, error) {
	var m ClubMember
	if err := r.db.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *gormClubRepository) ListMembers(clubID uint) ([]ClubMember, error) {
	var members []ClubMember
	err := r.db.Where("club_id = ?", clubID).Order("created_at ASC").Find(&members).Error
	return members, err
}

func (r *gormClubRepository) UpdateMember(m *ClubMember) error {
	return r.db.Save(m).Error
}

func (r *gormClubRepository) IsApprovedMember(clubID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&ClubMember{}).
		Where("club_id = ? AND user_id = ? AND status = ?", clubID, userID, StatusApproved).
		Count(&count).Error
	return count > 0, err
}

func (r *gormClubRepository) IsManager(clubID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&ClubMember{}).
		Where("club_id = ? AND user_id = ? AND status = ? AND role IN ?",
			clubID, userID, StatusApproved, []MemberRole{RoleOwner, RoleManager}).
		Count(&count).Error
	return count > 0, err
}
