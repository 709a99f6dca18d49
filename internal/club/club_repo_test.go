package club

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) ClubRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Club{}, &ClubMember{}))
	return NewGormClubRepository(db)
}

func TestMembershipApprovalFlow(t *testing.T) {
	repo := newTestRepo(t)

	c := &Club{Name: "한강 하키 클럽", OwnerID: 1}
	require.NoError(t, repo.CreateClub(c))
	require.NoError(t, repo.CreateMember(&ClubMember{
		ClubID: c.ID, UserID: 1, Role: RoleOwner, Status: StatusApproved,
	}))

	// A fresh join request is pending, so it neither passes the guest
	// gate nor grants manager rights.
	require.NoError(t, repo.CreateMember(&ClubMember{
		ClubID: c.ID, UserID: 2, Role: RoleMember, Status: StatusPending,
	}))

	ok, err := repo.IsApprovedMember(c.ID, 2)
	require.NoError(t, err)
	require.False(t, ok)

	m, err := repo.GetMember(c.ID, 2)
	require.NoError(t, err)
	m.Status = StatusApproved
	require.NoError(t, repo.UpdateMember(m))

	ok, err = repo.IsApprovedMember(c.ID, 2)
	require.NoError(t, err)
	require.True(t, ok)

	// Plain members are not managers; the owner is.
	ok, err = repo.IsManager(c.ID, 2)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = repo.IsManager(c.ID, 1)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestDuplicateMembershipRejected(t *testing.T) {
	repo := newTestRepo(t)

	c := &Club{Name: "부산 아이스하키", OwnerID: 1}
	require.NoError(t, repo.CreateClub(c))

	require.NoError(t, repo.CreateMember(&ClubMember{ClubID: c.ID, UserID: 5}))
	require.Error(t, repo.CreateMember(&ClubMember{ClubID: c.ID, UserID: 5}))
}

func TestGetMemberNotFound(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.GetMember(1, 999)
	require.ErrorIs(t, err, ErrMemberNotFound)
}
