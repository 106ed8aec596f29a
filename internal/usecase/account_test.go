package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/arklim/account-otp-service/internal/core/domain"
	"github.com/arklim/account-otp-service/internal/repository"
)

type mockUserRepo struct {
	byEmail map[string]*domain.User

	createErr   error
	getErr      error
	verifyErr   error
	createCalls int
	verifyCalls int
	createdUser domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{byEmail: make(map[string]*domain.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.byEmail[user.Email]; ok {
		return repository.ErrDuplicate
	}
	stored := user
	m.byEmail[user.Email] = &stored
	m.createdUser = user
	return nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	user, ok := m.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *mockUserRepo) MarkVerified(_ context.Context, id string) (bool, error) {
	m.verifyCalls++
	if m.verifyErr != nil {
		return false, m.verifyErr
	}
	for _, user := range m.byEmail {
		if user.ID == id {
			if user.IsVerified {
				return false, nil
			}
			user.IsVerified = true
			return true, nil
		}
	}
	return false, nil
}

type mockPasswordHasher struct {
	hashCalls    int
	compareCalls int
	hashErr      error
}

func (m *mockPasswordHasher) HashPassword(_ context.Context, password string) (string, error) {
	m.hashCalls++
	if m.hashErr != nil {
		return "", m.hashErr
	}
	return "pw:" + password, nil
}

func (m *mockPasswordHasher) ComparePassword(_ context.Context, hashedPassword, candidate string) (bool, error) {
	m.compareCalls++
	return hashedPassword == "pw:"+candidate, nil
}

type mockEventPublisher struct {
	registered []domain.UserRegisteredEvent
	verified   []domain.UserVerifiedEvent
	logins     []domain.UserLoginEvent
	publishErr error
}

func (m *mockEventPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	m.registered = append(m.registered, event)
	return m.publishErr
}

func (m *mockEventPublisher) PublishUserVerified(_ context.Context, event domain.UserVerifiedEvent) error {
	m.verified = append(m.verified, event)
	return m.publishErr
}

func (m *mockEventPublisher) PublishUserLogin(_ context.Context, event domain.UserLoginEvent) error {
	m.logins = append(m.logins, event)
	return m.publishErr
}

type accountFixture struct {
	svc    *AccountService
	users  *mockUserRepo
	hasher *mockPasswordHasher
	events *mockEventPublisher
	store  *mockOTPStore
	otp    *OTPService
}

func newAccountFixture(code string) *accountFixture {
	users := newMockUserRepo()
	hasher := &mockPasswordHasher{}
	events := &mockEventPublisher{}
	store := newMockOTPStore()
	otp := newTestOTPService(store, nil, code)
	return &accountFixture{
		svc:    NewAccountService(users, otp, hasher, events, nil),
		users:  users,
		hasher: hasher,
		events: events,
		store:  store,
		otp:    otp,
	}
}

func TestAccountService_Register_CreatesUnverifiedAccount(t *testing.T) {
	f := newAccountFixture("123456")

	user, issued, err := f.svc.Register(context.Background(), RegisterInput{
		Email:    "user@example.com",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.IsVerified {
		t.Fatalf("fresh accounts must start unverified")
	}
	if !user.IsActive {
		t.Fatalf("fresh accounts must start active")
	}
	if user.PasswordHash == "correct horse battery" {
		t.Fatalf("password must never be stored in plaintext")
	}
	if issued == nil || issued.Code != "123456" {
		t.Fatalf("expected issued registration code, got %+v", issued)
	}
	if f.users.createCalls != 1 {
		t.Fatalf("expected one create call, got %d", f.users.createCalls)
	}
	if len(f.events.registered) != 1 {
		t.Fatalf("expected registered event published")
	}
}

func TestAccountService_Register_RejectsVerifiedDuplicate(t *testing.T) {
	f := newAccountFixture("123456")
	f.users.byEmail["user@example.com"] = &domain.User{
		ID: "existing", Email: "user@example.com", IsVerified: true,
	}

	_, _, err := f.svc.Register(context.Background(), RegisterInput{
		Email:    "user@example.com",
		Password: "correct horse battery",
	})
	if !errors.Is(err, ErrDuplicateAccount) {
		t.Fatalf("expected ErrDuplicateAccount, got %v", err)
	}
	if f.users.createCalls != 0 {
		t.Fatalf("no create expected for a verified duplicate")
	}
}

func TestAccountService_Register_PendingAccountGetsFreshCode(t *testing.T) {
	f := newAccountFixture("111111")

	if _, _, err := f.svc.Register(context.Background(), RegisterInput{
		Email:    "user@example.com",
		Password: "correct horse battery",
	}); err != nil {
		t.Fatalf("first Register returned error: %v", err)
	}

	f.otp.generator = &stubCodeGenerator{code: "222222"}
	user, issued, err := f.svc.Register(context.Background(), RegisterInput{
		Email:    "user@example.com",
		Password: "a different password!",
	})
	if err != nil {
		t.Fatalf("repeated Register returned error: %v", err)
	}
	if user.ID != f.users.createdUser.ID {
		t.Fatalf("repeated registration must reuse the pending row")
	}
	if f.users.createCalls != 1 {
		t.Fatalf("expected a single create across both registrations, got %d", f.users.createCalls)
	}
	if issued.Code != "222222" {
		t.Fatalf("expected a fresh code, got %q", issued.Code)
	}

	if err := f.otp.ConfirmCode(context.Background(), "user@example.com", "111111"); !errors.Is(err, ErrOTPIncorrect) {
		t.Fatalf("stale registration code must be rejected, got %v", err)
	}
}

func TestAccountService_Register_ValidatesBeforeSideEffects(t *testing.T) {
	f := newAccountFixture("123456")

	cases := []struct {
		name  string
		input RegisterInput
	}{
		{name: "bad email", input: RegisterInput{Email: "nope", Password: "correct horse battery"}},
		{name: "short password", input: RegisterInput{Email: "user@example.com", Password: "short"}},
		{name: "empty password", input: RegisterInput{Email: "user@example.com"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := f.svc.Register(context.Background(), tc.input)
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
	if f.users.createCalls != 0 || f.hasher.hashCalls != 0 || f.store.setCalls != 0 {
		t.Fatalf("invalid input must not reach hashing or storage")
	}
}

func TestAccountService_ConfirmRegistration_FlipsVerifiedOnce(t *testing.T) {
	f := newAccountFixture("123456")

	if _, _, err := f.svc.Register(context.Background(), RegisterInput{
		Email:    "user@example.com",
		Password: "correct horse battery",
	}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	user, err := f.svc.ConfirmRegistration(context.Background(), "user@example.com", "123456")
	if err != nil {
		t.Fatalf("ConfirmRegistration returned error: %v", err)
	}
	if !user.IsVerified {
		t.Fatalf("expected account verified")
	}
	if len(f.events.verified) != 1 {
		t.Fatalf("expected verified event published")
	}

	_, err = f.svc.ConfirmRegistration(context.Background(), "user@example.com", "123456")
	if !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("second confirmation must report already verified, got %v", err)
	}
}

func TestAccountService_ConfirmRegistration_WrongCodeLeavesUnverified(t *testing.T) {
	f := newAccountFixture("123456")

	if _, _, err := f.svc.Register(context.Background(), RegisterInput{
		Email:    "user@example.com",
		Password: "correct horse battery",
	}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	_, err := f.svc.ConfirmRegistration(context.Background(), "user@example.com", "654321")
	if !errors.Is(err, ErrOTPIncorrect) {
		t.Fatalf("expected ErrOTPIncorrect, got %v", err)
	}
	if f.users.byEmail["user@example.com"].IsVerified {
		t.Fatalf("wrong code must not verify the account")
	}
	if f.users.verifyCalls != 0 {
		t.Fatalf("verified flip must be gated on a valid code")
	}
}

func TestAccountService_ConfirmRegistration_UnknownAccount(t *testing.T) {
	f := newAccountFixture("123456")

	_, err := f.svc.ConfirmRegistration(context.Background(), "ghost@example.com", "123456")
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountService_Login_IssuesCodeOnMatch(t *testing.T) {
	f := newAccountFixture("123456")
	f.users.byEmail["user@example.com"] = &domain.User{
		ID: "user-1", Email: "user@example.com",
		PasswordHash: "pw:correct horse battery",
		IsActive:     true, IsVerified: true,
	}

	issued, err := f.svc.Login(context.Background(), LoginInput{
		Email:    "user@example.com",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if issued == nil || issued.Code != "123456" {
		t.Fatalf("expected login code issued, got %+v", issued)
	}
}

func TestAccountService_Login_ConflatesUnknownAndWrongPassword(t *testing.T) {
	f := newAccountFixture("123456")
	f.users.byEmail["user@example.com"] = &domain.User{
		ID: "user-1", Email: "user@example.com",
		PasswordHash: "pw:correct horse battery",
	}

	_, wrongPassErr := f.svc.Login(context.Background(), LoginInput{
		Email:    "user@example.com",
		Password: "wrong password!!",
	})
	comparesAfterWrongPass := f.hasher.compareCalls

	_, unknownErr := f.svc.Login(context.Background(), LoginInput{
		Email:    "ghost@example.com",
		Password: "wrong password!!",
	})

	if !errors.Is(wrongPassErr, ErrInvalidCredentials) || !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Fatalf("both failures must map to ErrInvalidCredentials, got %v and %v", wrongPassErr, unknownErr)
	}
	if wrongPassErr.Error() != unknownErr.Error() {
		t.Fatalf("error text must not reveal which check failed")
	}
	if f.hasher.compareCalls != comparesAfterWrongPass+1 {
		t.Fatalf("unknown identities must still pay for a hash comparison")
	}
	if f.store.setCalls != 0 {
		t.Fatalf("no code may be issued on failed credentials")
	}
}

func TestAccountService_Login_ConflictWhileCodeInFlight(t *testing.T) {
	f := newAccountFixture("123456")
	f.users.byEmail["user@example.com"] = &domain.User{
		ID: "user-1", Email: "user@example.com",
		PasswordHash: "pw:correct horse battery",
	}

	input := LoginInput{Email: "user@example.com", Password: "correct horse battery"}
	if _, err := f.svc.Login(context.Background(), input); err != nil {
		t.Fatalf("first Login returned error: %v", err)
	}
	_, err := f.svc.Login(context.Background(), input)
	if !errors.Is(err, ErrOTPAlreadyActive) {
		t.Fatalf("expected ErrOTPAlreadyActive while a code is in flight, got %v", err)
	}
}

func TestAccountService_ConfirmLogin_ReturnsAccount(t *testing.T) {
	f := newAccountFixture("123456")
	f.users.byEmail["user@example.com"] = &domain.User{
		ID: "user-1", Email: "user@example.com",
		PasswordHash: "pw:correct horse battery",
	}

	if _, err := f.svc.Login(context.Background(), LoginInput{
		Email:    "user@example.com",
		Password: "correct horse battery",
	}); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	user, err := f.svc.ConfirmLogin(context.Background(), "user@example.com", "123456")
	if err != nil {
		t.Fatalf("ConfirmLogin returned error: %v", err)
	}
	if user.ID != "user-1" {
		t.Fatalf("expected the logged-in account, got %+v", user)
	}
	if len(f.events.logins) != 1 {
		t.Fatalf("expected login event published")
	}

	_, err = f.svc.ConfirmLogin(context.Background(), "user@example.com", "123456")
	if !errors.Is(err, ErrOTPVerificationFailed) {
		t.Fatalf("consumed login code must not be replayable, got %v", err)
	}
}

func TestAccountService_ConfirmLogin_AttemptBudgetLocksCode(t *testing.T) {
	f := newAccountFixture("123456")
	f.users.byEmail["user@example.com"] = &domain.User{
		ID: "user-1", Email: "user@example.com",
		PasswordHash: "pw:correct horse battery",
	}

	if _, err := f.svc.Login(context.Background(), LoginInput{
		Email:    "user@example.com",
		Password: "correct horse battery",
	}); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	for i := 0; i < 5; i++ {
		_, err := f.svc.ConfirmLogin(context.Background(), "user@example.com", "000000")
		if !errors.Is(err, ErrOTPIncorrect) {
			t.Fatalf("attempt %d: expected ErrOTPIncorrect, got %v", i+1, err)
		}
	}

	_, err := f.svc.ConfirmLogin(context.Background(), "user@example.com", "123456")
	if !errors.Is(err, ErrOTPAttemptsExceeded) {
		t.Fatalf("expected ErrOTPAttemptsExceeded after the budget is spent, got %v", err)
	}
	if len(f.events.logins) != 0 {
		t.Fatalf("no login event may fire for a locked code")
	}
}

func TestAccountService_EventPublishFailureDoesNotFailRequest(t *testing.T) {
	f := newAccountFixture("123456")
	f.events.publishErr = errors.New("broker unavailable")

	_, _, err := f.svc.Register(context.Background(), RegisterInput{
		Email:    "user@example.com",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("publish failure must not fail registration, got %v", err)
	}
}
