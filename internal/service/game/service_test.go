package game_test

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"tonk-service/internal/model"
	"tonk-service/internal/service/game"
	"tonk-service/internal/service/game/mocks"
	"tonk-service/internal/service/table"
	"tonk-service/internal/service/user"
	"tonk-service/internal/service/wallet"
	"tonk-service/internal/tonk"
	appErr "tonk-service/pkg/errors"
	"tonk-service/pkg/utils/random"

	"go.uber.org/mock/gomock"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type env struct {
	db      *gorm.DB
	svc     *game.Service
	hub     *game.Hub
	wallets *wallet.Service
	users   *user.Service
	tables  *table.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	e := &env{
		db:      db,
		hub:     game.NewHub(),
		wallets: wallet.NewService(db),
		users:   user.NewService(db),
		tables:  table.NewService(db),
	}
	engine := tonk.NewEngine(random.NewLocked(7))
	e.svc = game.NewService(db, engine, e.tables,
		game.NewLedgerFactory(e.wallets, e.users),
		game.WithNotifier(e.hub),
	)
	return e
}

func (e *env) player(t *testing.T, name string, balance int64) game.Identity {
	t.Helper()

	u := model.User{Username: name, PasswordHash: "x", Nickname: name}
	if err := e.db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	if balance > 0 {
		if _, err := e.wallets.Credit(context.Background(), wallet.Entry{
			UserID: u.ID,
			Amount: balance,
			Type:   model.BillingSignup,
		}); err != nil {
			t.Fatalf("fund wallet: %v", err)
		}
	}
	return game.Identity{UserID: u.ID, Name: name}
}

func (e *env) balance(t *testing.T, userID int64) int64 {
	t.Helper()
	w, err := e.wallets.GetWallet(context.Background(), userID)
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	return w.BalanceAvailable
}

func (e *env) stakeTable(t *testing.T, stake int64) model.StakeTable {
	t.Helper()
	var tbl model.StakeTable
	if err := e.db.Where("stake = ?", stake).First(&tbl).Error; err != nil {
		t.Fatalf("load stake table: %v", err)
	}
	return tbl
}

func TestCreateChargesStakeAndSeatsTable(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	alice := e.player(t, "alice", 100)

	view, err := e.svc.Create(ctx, alice, 10)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if view.ID == "" || len(view.Players) != tonk.SeatCount {
		t.Fatalf("unexpected view: %+v", view)
	}
	if view.Players[0].ID != strconv.FormatInt(alice.UserID, 10) || view.Players[0].Hand[0].Hidden {
		t.Fatalf("creator should hold seat 0 with a visible hand")
	}
	if !view.Players[1].Hand[0].Hidden {
		t.Fatalf("bot hands should be concealed")
	}
	if view.Pot != 40 || view.DrawPileCount != 19 || view.Status != tonk.StatusInProgress {
		t.Fatalf("unexpected table state: pot=%d deck=%d status=%s", view.Pot, view.DrawPileCount, view.Status)
	}

	if got := e.balance(t, alice.UserID); got != 90 {
		t.Fatalf("expected balance 90, got %d", got)
	}
	tbl := e.stakeTable(t, 10)
	if tbl.CurrentPlayers != 1 || tbl.ActiveGames != 1 {
		t.Fatalf("expected 1 player and 1 game, got %+v", tbl)
	}

	active, err := e.svc.ListActive(ctx, 10)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || active[0].ID != view.ID || active[0].Version != 1 {
		t.Fatalf("unexpected active list: %+v", active)
	}

	logs, err := e.wallets.Logs(ctx, alice.UserID, 10)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if len(logs) != 2 || logs[0].Type != model.BillingStake || logs[0].GameID == nil || *logs[0].GameID != view.ID {
		t.Fatalf("expected stake log for game %s, got %+v", view.ID, logs)
	}
}

func TestCreateWithoutFundsLeavesNothingBehind(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	bob := e.player(t, "bob", 5)

	_, err := e.svc.Create(ctx, bob, 10)
	if !errors.Is(err, appErr.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	var games, tables int64
	e.db.Model(&model.GameRecord{}).Count(&games)
	e.db.Model(&model.StakeTable{}).Count(&tables)
	if games != 0 || tables != 0 {
		t.Fatalf("expected rollback, found %d games and %d tables", games, tables)
	}
	if got := e.balance(t, bob.UserID); got != 5 {
		t.Fatalf("expected balance 5, got %d", got)
	}
}

func TestCreateRejectsUnofferedStake(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	if err := e.tables.EnsureStakes(ctx, []int64{10, 50}); err != nil {
		t.Fatalf("ensure stakes: %v", err)
	}
	alice := e.player(t, "alice", 100)

	if _, err := e.svc.Create(ctx, alice, 25); !errors.Is(err, appErr.ErrStakeNotOffered) {
		t.Fatalf("expected ErrStakeNotOffered, got %v", err)
	}
	if _, err := e.svc.Create(ctx, alice, 0); !errors.Is(err, tonk.ErrInvalidStake) {
		t.Fatalf("expected ErrInvalidStake, got %v", err)
	}
	if got := e.balance(t, alice.UserID); got != 100 {
		t.Fatalf("expected untouched balance, got %d", got)
	}
}

func TestFirstDropLetsBotsFinishAndSettles(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	alice := e.player(t, "alice", 100)

	view, err := e.svc.Create(ctx, alice, 10)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !view.Players[0].DropEligible {
		t.Fatalf("a fresh hand is always eligible")
	}

	ended, err := e.svc.Act(ctx, view.ID, alice, tonk.Action{Kind: tonk.ActionDrop})
	if err != nil {
		t.Fatalf("drop: %v", err)
	}
	if ended.Status != tonk.StatusEnded {
		t.Fatalf("expected the bots to finish the game, got %s", ended.Status)
	}
	if ended.WinnerID == strconv.FormatInt(alice.UserID, 10) {
		t.Fatalf("the first dropper cannot be the last one standing")
	}

	if got := e.balance(t, alice.UserID); got != 90 {
		t.Fatalf("expected balance 90, got %d", got)
	}
	profile, err := e.users.GetProfile(ctx, alice.UserID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.GamesPlayed != 1 || profile.GamesWon != 0 {
		t.Fatalf("expected 1 played and 0 won, got %d/%d", profile.GamesPlayed, profile.GamesWon)
	}
	tbl := e.stakeTable(t, 10)
	if tbl.CurrentPlayers != 0 || tbl.ActiveGames != 0 {
		t.Fatalf("expected table released, got %+v", tbl)
	}
	active, err := e.svc.ListActive(ctx, 10)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no active games, got %+v", active)
	}

	if _, err := e.svc.Act(ctx, view.ID, alice, tonk.Action{Kind: tonk.ActionDraw}); !errors.Is(err, tonk.ErrGameNotInProgress) {
		t.Fatalf("expected ErrGameNotInProgress, got %v", err)
	}
}

func TestJoinReplacesBotAndCharges(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	alice := e.player(t, "alice", 100)
	bob := e.player(t, "bob", 30)
	carol := e.player(t, "carol", 3)

	view, err := e.svc.Create(ctx, alice, 10)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	joined, err := e.svc.Join(ctx, view.ID, bob)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if joined.Players[1].ID != strconv.FormatInt(bob.UserID, 10) || joined.Players[1].IsBot {
		t.Fatalf("bob should take seat 1, got %+v", joined.Players[1])
	}
	if joined.Players[1].Hand[0].Hidden || !joined.Players[0].Hand[0].Hidden {
		t.Fatalf("bob should see only his own hand")
	}
	if got := e.balance(t, bob.UserID); got != 20 {
		t.Fatalf("expected balance 20, got %d", got)
	}
	if tbl := e.stakeTable(t, 10); tbl.CurrentPlayers != 2 || tbl.ActiveGames != 1 {
		t.Fatalf("expected 2 players in 1 game, got %+v", tbl)
	}

	if _, err := e.svc.Join(ctx, view.ID, bob); !errors.Is(err, tonk.ErrAlreadySeated) {
		t.Fatalf("expected ErrAlreadySeated, got %v", err)
	}
	if _, err := e.svc.Join(ctx, view.ID, carol); !errors.Is(err, appErr.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	state, err := e.svc.State(ctx, view.ID)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.Players[2].ID != "ai-2" {
		t.Fatalf("failed join must not seat carol, got %s", state.Players[2].ID)
	}
	if got := e.balance(t, bob.UserID); got != 20 {
		t.Fatalf("repeat join must not charge, got %d", got)
	}
}

func TestActBroadcastsPerViewer(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	alice := e.player(t, "alice", 100)

	view, err := e.svc.Create(ctx, alice, 10)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	mine := e.hub.Subscribe(view.ID, strconv.FormatInt(alice.UserID, 10))
	watcher := e.hub.Subscribe(view.ID, "")
	defer e.hub.Unsubscribe(mine)
	defer e.hub.Unsubscribe(watcher)

	if _, err := e.svc.Act(ctx, view.ID, alice, tonk.Action{Kind: tonk.ActionDraw}); err != nil {
		t.Fatalf("draw: %v", err)
	}

	got := receive(t, mine)
	if got.Phase != tonk.PhaseAwaitDiscard || len(got.Players[0].Hand) != tonk.HandSize+1 || got.Players[0].Hand[0].Hidden {
		t.Fatalf("unexpected player view: %+v", got)
	}
	if spectated := receive(t, watcher); !spectated.Players[0].Hand[0].Hidden {
		t.Fatalf("spectator should not see alice's hand")
	}
}

func TestConcurrentActionsAreSerialized(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	alice := e.player(t, "alice", 100)

	view, err := e.svc.Create(ctx, alice, 10)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.svc.Act(ctx, view.ID, alice, tonk.Action{Kind: tonk.ActionDraw})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, tonk.ErrAlreadyDrawn):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("expected exactly one draw to win, got %d", ok)
	}

	state, err := e.svc.State(ctx, view.ID)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if len(state.Players[0].Hand) != tonk.HandSize+1 {
		t.Fatalf("expected one extra card, got %d", len(state.Players[0].Hand))
	}
	if err := state.CheckConservation(); err != nil {
		t.Fatalf("conservation: %v", err)
	}
}

func TestGetUnknownGame(t *testing.T) {
	e := newEnv(t)
	if _, err := e.svc.Get(context.Background(), "nope", 0); !errors.Is(err, appErr.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
}

func TestLocalLockerSerializesPerGame(t *testing.T) {
	ctx := context.Background()
	l := game.NewLocalLocker()

	unlock, err := l.Lock(ctx, "g-1")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}

	acquired := make(chan struct{})
	go func() {
		release, err := l.Lock(ctx, "g-1")
		if err == nil {
			release()
		}
		close(acquired)
	}()

	other, err := l.Lock(ctx, "g-2")
	if err != nil {
		t.Fatalf("other game should not block: %v", err)
	}
	other()

	select {
	case <-acquired:
		t.Fatalf("second lock acquired while the first was held")
	case <-time.After(50 * time.Millisecond):
	}
	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatalf("second lock never acquired")
	}
}

func TestMultiNotifierJoinsErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	first := mocks.NewMockNotifier(ctrl)
	second := mocks.NewMockNotifier(ctrl)
	third := mocks.NewMockNotifier(ctrl)

	errA := errors.New("redis down")
	errB := errors.New("queue full")
	first.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errA)
	second.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
	third.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errB)

	err := game.MultiNotifier{first, nil, second, third}.Publish(context.Background(), &tonk.Game{ID: "g"})
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("expected both errors, got %v", err)
	}
}

func receive(t *testing.T, sub *game.Subscription) tonk.PublicGame {
	t.Helper()
	select {
	case msg, ok := <-sub.C:
		if !ok {
			t.Fatalf("subscription closed")
		}
		if msg.Type != "state" {
			t.Fatalf("expected state message, got %s", msg.Type)
		}
		view, ok := msg.Data.(tonk.PublicGame)
		if !ok {
			t.Fatalf("unexpected payload %T", msg.Data)
		}
		return view
	case <-time.After(time.Second):
		t.Fatalf("no message for %s", sub.ViewerID)
	}
	return tonk.PublicGame{}
}
