package remote

import (
	"encoding/json"
	"errors"

	"github.com/saturnino-fabrica-de-software/soma/internal/domain"
)

// translate maps an upstream {"error":{"code":...}} body back onto the
// matching domain error. Unknown codes are returned unchanged.
func translate(err error, known ...*domain.AppError) error {
	var se *StatusError
	if !errors.As(err, &se) {
		return err
	}

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if json.Unmarshal([]byte(se.Body), &body) != nil {
		return err
	}

	for _, k := range known {
		if k.Code == body.Error.Code {
			return k.WithError(err)
		}
	}
	return err
}
