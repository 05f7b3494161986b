package models

import "time"

// AdminSession is proof of a successful admin login. It only lives in
// process memory; a restart invalidates every session.
type AdminSession struct {
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}
