package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/sataplan/internal/sataplan/access"
	"github.com/aussiebroadwan/sataplan/internal/sataplan/domain"
	"github.com/aussiebroadwan/sataplan/internal/sataplan/store"
	"github.com/aussiebroadwan/sataplan/pkg/jwtx"
	"github.com/aussiebroadwan/sataplan/pkg/qrx"
	"github.com/aussiebroadwan/sataplan/pkg/slogx"
)

// QRCode is a rendered share link.
type QRCode struct {
	URL string
	PNG []byte
}

// ShareService shares goals through QR codes and resolves the tokens those
// codes carry.
type ShareService struct {
	Store   store.Store
	Scoped  *access.ScopedIssuer
	Gate    *access.Gate
	QR      *qrx.Encoder
	BaseURL string // frontend URL the QR codes point at
}

// CreatePermanentQR shares goalID permanently. The code points at the goal;
// the holder also needs the returned goal password, which replaces any
// earlier one.
func (s *ShareService) CreatePermanentQR(ctx context.Context, ownerID, goalID int64) (domain.PermanentShare, QRCode, error) {
	if _, err := ownedGoal(ctx, s.Store, ownerID, goalID); err != nil {
		return domain.PermanentShare{}, QRCode{}, err
	}

	share, err := s.Scoped.IssueScopedPermanent(ctx, goalID, ownerID)
	if err != nil {
		return domain.PermanentShare{}, QRCode{}, err
	}

	code, err := s.render(url.Values{"goal_id": {strconv.FormatInt(goalID, 10)}})
	if err != nil {
		return domain.PermanentShare{}, QRCode{}, err
	}

	slogx.FromContext(ctx).Info("goal shared permanently", "goal_id", goalID)
	return share, code, nil
}

// CreateOneTimeQR mints a single use token for goalID and encodes it in
// the code's URL.
func (s *ShareService) CreateOneTimeQR(ctx context.Context, ownerID, goalID int64) (domain.ScopedToken, QRCode, error) {
	if _, err := ownedGoal(ctx, s.Store, ownerID, goalID); err != nil {
		return domain.ScopedToken{}, QRCode{}, err
	}

	tok, err := s.Scoped.IssueOneTime(goalID)
	if err != nil {
		return domain.ScopedToken{}, QRCode{}, err
	}

	code, err := s.render(url.Values{"token": {tok.Token}})
	if err != nil {
		return domain.ScopedToken{}, QRCode{}, err
	}
	return tok, code, nil
}

// VerifyGoalAccess redeems the share password of goalID for a permanent
// view token issued on behalf of the goal's owner.
func (s *ShareService) VerifyGoalAccess(ctx context.Context, goalID int64, password string) (domain.ScopedToken, error) {
	g, err := s.Store.Goals().GetGoalByID(ctx, goalID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.ScopedToken{}, ErrGoalNotFound
	}
	if err != nil {
		return domain.ScopedToken{}, fmt.Errorf("get goal: %w", err)
	}

	tok, err := s.Scoped.RedeemGoalPassword(ctx, goalID, g.UserID, password)
	if err != nil {
		if errors.Is(err, access.ErrInvalidGoalPassword) {
			slogx.FromContext(ctx).Info("goal password rejected", "goal_id", goalID)
		}
		return domain.ScopedToken{}, err
	}
	return tok, nil
}

// ViewSharedGoal authorizes a QR token and loads the goal it grants. A
// one-time token is consumed here, even if the goal turns out to be gone.
// The token's claims are checked against live state: the goal must still
// exist and, for permanent grants, still belong to the granting owner.
func (s *ShareService) ViewSharedGoal(ctx context.Context, token string) (domain.SharedGoal, error) {
	claims, err := s.Gate.Authorize(ctx, token, jwtx.KindQRPermanent, jwtx.KindQROneTime)
	if err != nil {
		return domain.SharedGoal{}, err
	}

	g, err := s.Store.Goals().GetGoalByID(ctx, claims.ResourceID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.SharedGoal{}, ErrGoalNotFound
	}
	if err != nil {
		return domain.SharedGoal{}, fmt.Errorf("get goal: %w", err)
	}

	if claims.Kind == jwtx.KindQRPermanent && !g.OwnedBy(claims.PrincipalID) {
		return domain.SharedGoal{}, ErrForbidden
	}

	owner, err := s.Store.Users().GetUserByID(ctx, g.UserID)
	if err != nil {
		return domain.SharedGoal{}, fmt.Errorf("get owner: %w", err)
	}

	return domain.SharedGoal{
		Goal:  g,
		Owner: owner.Username,
		Kind:  claims.Kind.String(),
	}, nil
}

func (s *ShareService) render(q url.Values) (QRCode, error) {
	link := strings.TrimSuffix(s.BaseURL, "/") + "/?" + q.Encode()
	png, err := s.QR.PNG(link)
	if err != nil {
		return QRCode{}, err
	}
	return QRCode{URL: link, PNG: png}, nil
}
