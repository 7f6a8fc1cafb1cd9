package entitlements

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/MindMentorHQ/MindMentor/app/models"
)

func TestNormalizeTier(t *testing.T) {
	cases := []struct {
		in   string
		want Tier
	}{
		{"admin", TierAdmin},
		{"paid", TierPaid},
		{"unpaid", TierUnpaid},
		{"  Admin ", TierAdmin},
		{"PAID", TierPaid},
		{"", TierUnpaid},
		{"premium", TierUnpaid},
		{"garbage", TierUnpaid},
	}
	for _, tc := range cases {
		if got := NormalizeTier(tc.in); got != tc.want {
			t.Fatalf("NormalizeTier(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestHasUnlimitedAccess(t *testing.T) {
	if !HasUnlimitedAccess(TierAdmin) {
		t.Fatal("admin should have unlimited access")
	}
	if !HasUnlimitedAccess(TierPaid) {
		t.Fatal("paid should have unlimited access")
	}
	if HasUnlimitedAccess(TierUnpaid) {
		t.Fatal("unpaid must not have unlimited access")
	}
}

func TestTierRankOrdering(t *testing.T) {
	if !(TierRank(TierAdmin) > TierRank(TierPaid) && TierRank(TierPaid) > TierRank(TierUnpaid)) {
		t.Fatalf("tier ranks out of order: admin=%d paid=%d unpaid=%d",
			TierRank(TierAdmin), TierRank(TierPaid), TierRank(TierUnpaid))
	}
	if TierRank("whatever") != TierRank(TierUnpaid) {
		t.Fatal("unknown tiers must rank like unpaid")
	}
}

type fakeAccountSource struct {
	users map[uint]*models.User
	err   error
}

func (f *fakeAccountSource) GetByID(id uint) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func TestResolveTier(t *testing.T) {
	source := &fakeAccountSource{users: map[uint]*models.User{
		1: {ID: 1, Tier: models.TIER_ADMIN},
		2: {ID: 2, Tier: models.TIER_PAID},
		3: {ID: 3, Tier: models.TIER_UNPAID},
		4: {ID: 4, Tier: "bogus"},
	}}
	r := NewResolver(source)
	ctx := context.Background()

	cases := []struct {
		id   uint
		want Tier
	}{
		{1, TierAdmin},
		{2, TierPaid},
		{3, TierUnpaid},
		{4, TierUnpaid},
		{0, TierUnpaid},  // anonymous
		{99, TierUnpaid}, // not found
	}
	for _, tc := range cases {
		if got := r.ResolveTier(ctx, tc.id); got != tc.want {
			t.Fatalf("ResolveTier(%d) = %q, want %q", tc.id, got, tc.want)
		}
	}
}

func TestResolveTierFailsClosed(t *testing.T) {
	r := NewResolver(&fakeAccountSource{err: errors.New("connection refused")})
	if got := r.ResolveTier(context.Background(), 1); got != TierUnpaid {
		t.Fatalf("store error resolved to %q, want unpaid", got)
	}

	r = NewResolver(nil)
	if got := r.ResolveTier(context.Background(), 1); got != TierUnpaid {
		t.Fatalf("nil source resolved to %q, want unpaid", got)
	}
}
