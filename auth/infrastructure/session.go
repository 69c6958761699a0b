package infrastructure

import (
	"github.com/AzielCF/az-chat/auth/domain"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	keyUserID       = "user_id"
	keyUserName     = "user_name"
	keyUserUsername = "user_username"
	keyUserEmail    = "user_email"

	keyLoginState    = "login_state"
	keyLoginNonce    = "login_nonce"
	keyLoginVerifier = "login_verifier"
	keyLoginNext     = "login_next"
)

// Values are stored as plain strings so the session codec needs no type
// registration.

func sessionString(sess *session.Session, key string) string {
	v, _ := sess.Get(key).(string)
	return v
}

func storeUser(sess *session.Session, user domain.User) {
	sess.Set(keyUserID, user.ID)
	sess.Set(keyUserName, user.Name)
	sess.Set(keyUserUsername, user.Username)
	sess.Set(keyUserEmail, user.Email)
}

func loadUser(sess *session.Session) (domain.User, bool) {
	id := sessionString(sess, keyUserID)
	if id == "" {
		return domain.User{}, false
	}
	return domain.User{
		ID:       id,
		Name:     sessionString(sess, keyUserName),
		Username: sessionString(sess, keyUserUsername),
		Email:    sessionString(sess, keyUserEmail),
	}, true
}

func storeAttempt(sess *session.Session, attempt domain.LoginAttempt) {
	sess.Set(keyLoginState, attempt.State)
	sess.Set(keyLoginNonce, attempt.Nonce)
	sess.Set(keyLoginVerifier, attempt.Verifier)
	sess.Set(keyLoginNext, attempt.Next)
}

func takeAttempt(sess *session.Session) *domain.LoginAttempt {
	attempt := &domain.LoginAttempt{
		State:    sessionString(sess, keyLoginState),
		Nonce:    sessionString(sess, keyLoginNonce),
		Verifier: sessionString(sess, keyLoginVerifier),
		Next:     sessionString(sess, keyLoginNext),
	}
	for _, key := range []string{keyLoginState, keyLoginNonce, keyLoginVerifier, keyLoginNext} {
		sess.Delete(key)
	}
	if attempt.State == "" {
		return nil
	}
	return attempt
}
