package httpapi

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	"leadsyncflow.app/internal/auth"
	"leadsyncflow.app/internal/obs"
)

type signupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Sex             string `json:"sex"`
	Department      string `json:"department"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	input, err := decodeSignup(w, r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	account, err := a.svc.Register(r.Context(), input)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	obs.SignupsTotal.Inc()
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Signup successful",
		"user":    account.Public(),
	})
}

// decodeSignup accepts either a plain JSON body or multipart/form-data with
// an optional "image" part.
func decodeSignup(w http.ResponseWriter, r *http.Request) (auth.SignupInput, error) {
	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if contentType != "multipart/form-data" {
		var req signupRequest
		if err := decodeJSON(w, r, &req); err != nil {
			return auth.SignupInput{}, err
		}
		return auth.SignupInput{
			Name:            req.Name,
			Email:           req.Email,
			Sex:             req.Sex,
			Department:      req.Department,
			Password:        req.Password,
			ConfirmPassword: req.ConfirmPassword,
		}, nil
	}

	if err := r.ParseMultipartForm(1 << 20); err != nil {
		return auth.SignupInput{}, errors.New("invalid multipart body")
	}
	input := auth.SignupInput{
		Name:            r.FormValue("name"),
		Email:           r.FormValue("email"),
		Sex:             r.FormValue("sex"),
		Department:      r.FormValue("department"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirmPassword"),
	}

	file, _, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return input, nil
	case err != nil:
		return auth.SignupInput{}, errors.New("invalid image upload")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return auth.SignupInput{}, errors.New("invalid image upload")
	}
	input.Image = data
	return input, nil
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		obs.LoginsTotal.WithLabelValues("bad_request").Inc()
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	token, expiresAt, account, err := a.svc.Login(r.Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch auth.KindOf(err) {
		case auth.KindForbidden:
			obs.LoginsTotal.WithLabelValues("not_approved").Inc()
		case auth.KindUnauthorized:
			obs.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		default:
			obs.LoginsTotal.WithLabelValues("bad_request").Inc()
		}
		handleServiceError(w, r, err)
		return
	}

	obs.LoginsTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Login successful",
		"token":     token,
		"expiresIn": int64(time.Until(expiresAt).Round(time.Second).Seconds()),
		"user":      account.Public(),
	})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	token := extractBearerToken(r.Header.Get(authHeader))
	if err := a.svc.Logout(r.Context(), token); err != nil {
		handleServiceError(w, r, err)
		return
	}

	obs.RevocationsTotal.Inc()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Logged out",
	})
}
