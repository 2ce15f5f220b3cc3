package email

import (
	"fmt"
	"time"
)

// VerificationSubject is the subject line on OTP mail.
const VerificationSubject = "Your CeylonBites verification code"

// VerificationBody renders the OTP email body. ttl is phrased in whole
// minutes.
func VerificationBody(code string, ttl time.Duration) string {
	return fmt.Sprintf(
		"Welcome to CeylonBites!\n\nYour verification code is:\n\n  %s\n\nThe code expires in %d minutes.\n\nIf you did not sign up, ignore this email.\n",
		code, int(ttl.Minutes()),
	)
}
