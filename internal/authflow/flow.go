// Package authflow implements account sign-up and sign-in as one state
// machine: validate, call the identity gateway, read or write the profile,
// check the role, cache it, and pick a landing destination.
package authflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"uniportal/internal/model"
)

// State is a step of the flow.
type State string

const (
	StateIdle                   State = "idle"
	StateValidating             State = "validating"
	StateCreatingIdentity       State = "creating_identity"
	StateAuthenticatingIdentity State = "authenticating_identity"
	StateFetchingProfile        State = "fetching_profile"
	StateCheckingRole           State = "checking_role"
	StatePersistingProfile      State = "persisting_profile"
	StateCachingRole            State = "caching_role"
	StateDone                   State = "done"
	StateFailed                 State = "error"
)

// Session is an authenticated identity session handed out on sign-in.
type Session struct {
	IdentityID   string    `json:"-"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// IdentityGateway owns credentials and identity sessions. Error messages are
// shown to users as-is.
type IdentityGateway interface {
	CreateIdentity(ctx context.Context, email, password string) (string, error)
	Authenticate(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, identityID string) error
}

// ProfileStore holds one profile per identity. Get returns ErrProfileNotFound
// when the identity has no record.
type ProfileStore interface {
	Put(ctx context.Context, identityID string, profile model.UserProfile) error
	Get(ctx context.Context, identityID string) (*model.UserProfile, error)
}

// RoleCacheKey is the key the last known role is cached under.
const RoleCacheKey = "userRole"

// RoleCache stores the last known role for a device. Writes replace the whole value.
type RoleCache interface {
	SetRole(ctx context.Context, device string, role model.Role) error
}

// Request is one submission from the caller.
type Request struct {
	Mode   Mode
	Role   model.Role
	Fields model.SignupFields
	// Device scopes the cached role. Empty means the default device.
	Device string
	// SessionKey identifies the UI session for the in-flight gate. Empty
	// falls back to the normalized email.
	SessionKey string
}

// Outcome is the success signal of a flow.
type Outcome struct {
	Mode        Mode              `json:"mode"`
	Role        model.Role        `json:"role"`
	Destination model.Destination `json:"destination"`
	IdentityID  string            `json:"identity_id"`
	// Session is set on sign-in only.
	Session *Session `json:"session,omitempty"`
	// Resumed is true when sign-up finished the profile of an identity left
	// behind by an earlier failed attempt.
	Resumed bool `json:"resumed,omitempty"`
}

// Observer is told about every state the flow enters, in order.
type Observer func(mode Mode, state State)

// Option configures a Flow.
type Option func(*Flow)

// WithClock overrides the time source used for new profiles.
func WithClock(now func() time.Time) Option {
	return func(f *Flow) {
		if now != nil {
			f.now = now
		}
	}
}

// WithObserver registers an observer for state transitions.
func WithObserver(o Observer) Option {
	return func(f *Flow) {
		if o != nil {
			f.observers = append(f.observers, o)
		}
	}
}

// Flow runs sign-up and sign-in attempts against the injected collaborators.
type Flow struct {
	validator  *Validator
	identities IdentityGateway
	profiles   ProfileStore
	roles      RoleCache
	now        func() time.Time
	observers  []Observer

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// New creates a flow.
func New(validator *Validator, identities IdentityGateway, profiles ProfileStore, roles RoleCache, opts ...Option) *Flow {
	if validator == nil {
		validator = NewValidator(DefaultDomain)
	}
	f := &Flow{
		validator:  validator,
		identities: identities,
		profiles:   profiles,
		roles:      roles,
		now:        time.Now,
		inFlight:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Validator returns the validator the flow gates submissions with.
func (f *Flow) Validator() *Validator {
	return f.validator
}

// SignUp provisions a new account.
func (f *Flow) SignUp(ctx context.Context, role model.Role, fields model.SignupFields, device string) (*Outcome, error) {
	return f.Run(ctx, Request{Mode: ModeSignUp, Role: role, Fields: fields, Device: device})
}

// SignIn authenticates an existing account under the selected role.
func (f *Flow) SignIn(ctx context.Context, role model.Role, fields model.SignupFields, device string) (*Outcome, error) {
	return f.Run(ctx, Request{Mode: ModeSignIn, Role: role, Fields: fields, Device: device})
}

// Run executes one attempt to completion. A second submission for the same
// session while one is running is rejected with KindBusy. Submissions with
// neither a session key nor an email are not gated; validation rejects them.
func (f *Flow) Run(ctx context.Context, req Request) (*Outcome, error) {
	key := req.SessionKey
	if key == "" {
		key = normalizeEmail(req.Fields.Email)
	}
	if key != "" {
		if !f.acquire(key) {
			return nil, &Error{
				Kind:    KindBusy,
				Code:    CodeFlowInProgress,
				Message: "a request for this account is already in progress",
				State:   StateIdle,
			}
		}
		defer f.release(key)
	}

	a := &attempt{flow: f, req: req, state: StateIdle}
	f.notify(req.Mode, StateIdle)

	var (
		out *Outcome
		err error
	)
	switch req.Mode {
	case ModeSignUp:
		out, err = a.signUp(ctx)
	case ModeSignIn:
		out, err = a.signIn(ctx)
	default:
		err = &Error{Kind: KindValidation, Code: CodeMissingField, Field: "mode", Message: fmt.Sprintf("unknown mode %q", req.Mode), State: StateIdle}
	}

	if err != nil {
		f.notify(req.Mode, StateFailed)
		log.Printf("auth %s failed at %s for %s: %v", req.Mode, a.state, maskEmail(req.Fields.Email), err)
		return nil, err
	}
	a.enter(StateDone)
	return out, nil
}

func (f *Flow) acquire(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.inFlight[key]; busy {
		return false
	}
	f.inFlight[key] = struct{}{}
	return true
}

func (f *Flow) release(key string) {
	f.mu.Lock()
	delete(f.inFlight, key)
	f.mu.Unlock()
}

func (f *Flow) notify(mode Mode, state State) {
	for _, o := range f.observers {
		o(mode, state)
	}
}

// attempt carries the state of a single run.
type attempt struct {
	flow  *Flow
	req   Request
	state State
}

func (a *attempt) enter(s State) {
	a.state = s
	a.flow.notify(a.req.Mode, s)
}

func (a *attempt) validate() error {
	a.enter(StateValidating)
	res := a.flow.validator.Validate(a.req.Fields, a.req.Role, a.req.Mode)
	if res.OK() {
		return nil
	}
	return &Error{Kind: KindValidation, Code: res.Code, Field: res.Field, Message: res.Message, State: StateValidating}
}

func (a *attempt) signUp(ctx context.Context) (*Outcome, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}

	a.enter(StateCreatingIdentity)
	email := normalizeEmail(a.req.Fields.Email)
	resumed := false
	identityID, err := a.flow.identities.CreateIdentity(ctx, email, a.req.Fields.Password)
	if err != nil {
		if !errors.Is(err, ErrIdentityExists) {
			return nil, identityError(StateCreatingIdentity, err)
		}
		orphan, ok := a.findOrphan(ctx, email)
		if !ok {
			return nil, identityError(StateCreatingIdentity, err)
		}
		identityID, resumed = orphan, true
	}

	a.enter(StatePersistingProfile)
	profile := BuildProfile(identityID, a.req.Fields, a.req.Role, a.flow.now())
	if err := a.flow.profiles.Put(ctx, identityID, profile); err != nil {
		return nil, &Error{
			Kind:    KindProfileWrite,
			Code:    CodeProfileWriteFailed,
			Message: "account created but profile could not be saved; submit the sign-up form again to finish: " + err.Error(),
			State:   StatePersistingProfile,
			Err:     err,
		}
	}

	if err := a.cacheRole(ctx, a.req.Role); err != nil {
		return nil, err
	}

	return &Outcome{
		Mode:        ModeSignUp,
		Role:        a.req.Role,
		Destination: a.req.Role.Destination(),
		IdentityID:  identityID,
		Resumed:     resumed,
	}, nil
}

// findOrphan reports an identity that exists for email, accepts the submitted
// password, and has no profile yet. The session opened to check is always signed out.
func (a *attempt) findOrphan(ctx context.Context, email string) (string, bool) {
	sess, err := a.flow.identities.Authenticate(ctx, email, a.req.Fields.Password)
	if err != nil {
		return "", false
	}
	defer func() {
		if err := a.flow.identities.SignOut(ctx, sess.IdentityID); err != nil {
			log.Printf("auth signup: sign out check session %s: %v", sess.IdentityID, err)
		}
	}()

	_, err = a.flow.profiles.Get(ctx, sess.IdentityID)
	if errors.Is(err, ErrProfileNotFound) {
		log.Printf("auth signup: resuming orphaned identity %s", sess.IdentityID)
		return sess.IdentityID, true
	}
	return "", false
}

func (a *attempt) signIn(ctx context.Context) (*Outcome, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}

	a.enter(StateAuthenticatingIdentity)
	sess, err := a.flow.identities.Authenticate(ctx, normalizeEmail(a.req.Fields.Email), a.req.Fields.Password)
	if err != nil {
		return nil, identityError(StateAuthenticatingIdentity, err)
	}

	a.enter(StateFetchingProfile)
	profile, err := a.flow.profiles.Get(ctx, sess.IdentityID)
	if err != nil {
		a.revoke(ctx, sess.IdentityID)
		if errors.Is(err, ErrProfileNotFound) {
			return nil, &Error{Kind: KindProfileNotFound, Code: CodeProfileNotFound, Message: "profile not found", State: StateFetchingProfile, Err: err}
		}
		return nil, &Error{Kind: KindProfileRead, Code: CodeProfileReadFailed, Message: err.Error(), State: StateFetchingProfile, Err: err}
	}

	a.enter(StateCheckingRole)
	if profile.Role != a.req.Role {
		// The session must be gone before the caller hears about the mismatch.
		a.revoke(ctx, sess.IdentityID)
		return nil, roleMismatch(profile.Role)
	}

	if err := a.cacheRole(ctx, profile.Role); err != nil {
		a.revoke(ctx, sess.IdentityID)
		return nil, err
	}

	return &Outcome{
		Mode:        ModeSignIn,
		Role:        profile.Role,
		Destination: profile.Role.Destination(),
		IdentityID:  sess.IdentityID,
		Session:     sess,
	}, nil
}

func (a *attempt) cacheRole(ctx context.Context, role model.Role) error {
	a.enter(StateCachingRole)
	if err := a.flow.roles.SetRole(ctx, a.req.Device, role); err != nil {
		return &Error{Kind: KindRoleCache, Code: CodeRoleCacheFailed, Message: "could not remember role: " + err.Error(), State: StateCachingRole, Err: err}
	}
	return nil
}

func (a *attempt) revoke(ctx context.Context, identityID string) {
	if err := a.flow.identities.SignOut(ctx, identityID); err != nil {
		log.Printf("auth signin: sign out %s: %v", identityID, err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func maskEmail(email string) string {
	email = normalizeEmail(email)
	at := strings.IndexByte(email, '@')
	if at <= 1 {
		return email
	}
	return email[:1] + "***" + email[at:]
}
