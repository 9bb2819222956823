package server

import (
	"net/http"
	"strings"
	"time"

	"givelocal/internal"
	"givelocal/internal/identity"
	"givelocal/internal/utils"
	gltypes "givelocal/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/sirupsen/logrus"
)

type registerForm struct {
	Email       string `form:"email" json:"email"`
	Password    string `form:"password" json:"password"`
	DisplayName string `form:"display_name" json:"display_name"`
	Role        string `form:"role" json:"role"`

	// Beneficiary fields
	NRIC              string `form:"nric" json:"nric"`
	Address           string `form:"address" json:"address"`
	Birthdate         string `form:"birthdate" json:"birthdate"` // YYYY-MM-DD
	DeclarationAgreed bool   `form:"declaration_agreed" json:"declaration_agreed"`

	// Organization fields
	OrganizationName        string `form:"organization_name" json:"organization_name"`
	OrganizationDescription string `form:"organization_description" json:"organization_description"`
}

func (s *Service) handlePostRegister(w http.ResponseWriter, r *http.Request) {
	var form registerForm
	if err := s.decodeForm(r, &form); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	form.Email = strings.TrimSpace(form.Email)
	form.DisplayName = strings.TrimSpace(form.DisplayName)

	if form.Email == "" || form.Password == "" || form.DisplayName == "" {
		s.respondError(w, http.StatusBadRequest, "email, password and display_name are required")
		return
	}

	role := gltypes.Role(form.Role)
	switch role {
	case gltypes.RoleUser, gltypes.RoleBeneficiary, gltypes.RoleOrganization:
	default:
		s.respondError(w, http.StatusBadRequest, "role must be user, beneficiary or organization")
		return
	}

	if role == gltypes.RoleBeneficiary {
		if form.NRIC == "" || form.Address == "" || form.Birthdate == "" {
			s.respondError(w, http.StatusBadRequest, "nric, address and birthdate are required for beneficiaries")
			return
		}
		if !form.DeclarationAgreed {
			s.respondError(w, http.StatusBadRequest, "declaration must be agreed")
			return
		}
	}

	if role == gltypes.RoleOrganization && strings.TrimSpace(form.OrganizationName) == "" {
		s.respondError(w, http.StatusBadRequest, "organization_name is required for organizations")
		return
	}

	signUp, err := s.cognitoClient.SignUp(r.Context(), &cognitoidentityprovider.SignUpInput{
		ClientId: aws.String(s.config.CognitoClientID),
		Username: aws.String(form.Email),
		Password: aws.String(form.Password),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(form.Email)},
		},
	})
	if err != nil {
		s.logger.WithError(err).Error("failed to sign up user")
		s.respondError(w, http.StatusBadRequest, "registration failed")
		return
	}

	userID := aws.ToString(signUp.UserSub)

	// Donors are usable immediately; beneficiaries and organizations wait
	// for admin review.
	status := gltypes.ProfileStatusActive
	if role == gltypes.RoleBeneficiary || role == gltypes.RoleOrganization {
		status = gltypes.ProfileStatusPending
	}

	profile := &gltypes.Profile{
		ID:          userID,
		Email:       form.Email,
		DisplayName: form.DisplayName,
		Status:      status,
	}

	if role == gltypes.RoleBeneficiary {
		birthdate, err := time.Parse("2006-01-02", form.Birthdate)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "birthdate must be YYYY-MM-DD")
			return
		}
		profile.NRIC = utils.StringPtr(form.NRIC)
		profile.Address = utils.StringPtr(form.Address)
		profile.Birthdate = utils.TimePtr(birthdate)
		profile.DeclarationAgreed = true
	}

	if err := s.profileRepo.Create(r.Context(), profile); err != nil {
		s.logger.WithError(err).Error("failed to create profile")
		s.internalServerError(w)
		return
	}

	if err := s.roleRepo.Create(r.Context(), &gltypes.UserRole{UserID: userID, Role: role}); err != nil {
		s.logger.WithError(err).Error("failed to create role")
		s.internalServerError(w)
		return
	}

	if role == gltypes.RoleOrganization {
		org := &gltypes.Organization{
			OwnerID: userID,
			Name:    strings.TrimSpace(form.OrganizationName),
			Status:  gltypes.OrganizationStatusPending,
		}
		if desc := strings.TrimSpace(form.OrganizationDescription); desc != "" {
			org.Description = utils.StringPtr(desc)
		}
		if err := s.orgRepo.Create(r.Context(), org); err != nil {
			s.logger.WithError(err).Error("failed to create organization")
			s.internalServerError(w)
			return
		}
	}

	s.respondJSON(w, http.StatusCreated, map[string]any{
		"user_id":               userID,
		"confirmation_required": !signUp.UserConfirmed,
	})
}

type confirmForm struct {
	Email string `form:"email" json:"email"`
	Code  string `form:"code" json:"code"`
}

func (s *Service) handlePostConfirm(w http.ResponseWriter, r *http.Request) {
	var form confirmForm
	if err := s.decodeForm(r, &form); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	_, err := s.cognitoClient.ConfirmSignUp(r.Context(), &cognitoidentityprovider.ConfirmSignUpInput{
		ClientId:         aws.String(s.config.CognitoClientID),
		Username:         aws.String(form.Email),
		ConfirmationCode: aws.String(form.Code),
	})
	if err != nil {
		s.logger.WithError(err).Error("failed to confirm sign up")
		s.respondError(w, http.StatusBadRequest, "confirmation failed")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"status": "confirmed"})
}

type loginForm struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

func (s *Service) handlePostLogin(w http.ResponseWriter, r *http.Request) {
	var form loginForm
	if err := s.decodeForm(r, &form); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	input := &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(s.config.CognitoClientID),
		AuthParameters: map[string]string{
			"USERNAME": form.Email,
			"PASSWORD": form.Password,
		},
	}

	resp, err := s.cognitoClient.InitiateAuth(r.Context(), input)
	if err != nil {
		// NotAuthorizedException, UserNotConfirmedException, etc.
		s.respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if resp.AuthenticationResult == nil || resp.AuthenticationResult.AccessToken == nil {
		s.respondError(w, http.StatusUnauthorized, "login failed")
		return
	}

	accessToken := aws.ToString(resp.AuthenticationResult.AccessToken)
	expiresIn := int(resp.AuthenticationResult.ExpiresIn)

	// Correct credentials are not enough: banned and unverified accounts
	// are turned away before any session cookie exists.
	profile, err := s.profileRepo.ProfileByEmail(r.Context(), form.Email)
	if err != nil {
		s.logger.WithError(err).Error("failed to load profile for login gate")
		s.respondError(w, http.StatusUnauthorized, "login failed")
		return
	}

	userRole, err := s.roleRepo.RoleByUser(r.Context(), profile.ID)
	if err != nil {
		s.logger.WithError(err).Error("failed to load role for login gate")
		s.respondError(w, http.StatusUnauthorized, "login failed")
		return
	}

	if err := identity.CheckLoginAllowed(profile, userRole.Role); err != nil {
		s.logger.WithFields(logrus.Fields{
			"user_id": profile.ID,
			"reason":  err.Error(),
		}).Info("login refused by account gate")
		s.respondError(w, http.StatusForbidden, err.Error())
		return
	}

	encryptedToken, err := s.cookie.Encode(internal.COOKIE_ACCESS_TOKEN_NAME, accessToken)
	if err != nil {
		s.logger.WithError(err).Error("failed to encrypt access token")
		s.respondError(w, http.StatusUnauthorized, "login failed")
		return
	}

	// Set httpOnly, secure cookie with access token
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_ACCESS_TOKEN_NAME,
		Value:    encryptedToken,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   expiresIn,
		Path:     "/",
	})

	session := s.resolver.Resolve(r.Context(), profile.ID)
	s.respondJSON(w, http.StatusOK, session)
}

func (s *Service) handlePostLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_ACCESS_TOKEN_NAME,
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})

	s.respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *Service) handleGetSession(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userIDFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	session := s.resolver.Resolve(r.Context(), userID)

	// A valid token whose account has since been banned or rejected is
	// force-signed-out here rather than on the next login.
	if session.State == identity.StateReady {
		if err := identity.CheckLoginAllowed(&session.User.Profile, session.User.Role); err != nil {
			http.SetCookie(w, &http.Cookie{
				Name:     internal.COOKIE_ACCESS_TOKEN_NAME,
				Value:    "",
				HttpOnly: true,
				Secure:   true,
				SameSite: http.SameSiteLaxMode,
				Path:     "/",
				MaxAge:   -1,
			})
			s.respondError(w, http.StatusForbidden, err.Error())
			return
		}
	}

	s.respondJSON(w, http.StatusOK, session)
}
