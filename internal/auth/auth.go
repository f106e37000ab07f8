// Package auth passes sign up, sign in and sign out requests through to a
// Cognito user pool. Tokens are issued and checked by Cognito alone.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"
	"github.com/dannyrandall/moviereviews/internal/apperr"
)

// API is the part of the Cognito identity provider client the pass-through
// uses.
type API interface {
	SignUp(ctx context.Context, params *cip.SignUpInput, optFns ...func(*cip.Options)) (*cip.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, params *cip.ConfirmSignUpInput, optFns ...func(*cip.Options)) (*cip.ConfirmSignUpOutput, error)
	InitiateAuth(ctx context.Context, params *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
	GlobalSignOut(ctx context.Context, params *cip.GlobalSignOutInput, optFns ...func(*cip.Options)) (*cip.GlobalSignOutOutput, error)
}

var _ API = (*cip.Client)(nil)

// Tokens are the credentials Cognito returns for a successful sign in.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int32  `json:"expiresIn"`
}

type Client struct {
	api      API
	clientID string
}

// New returns a client for the user pool app client clientID.
func New(api API, clientID string) *Client {
	return &Client{api: api, clientID: clientID}
}

// SignUp registers a user whose user name is their email address.
func (c *Client) SignUp(ctx context.Context, username, email, password string) error {
	_, err := c.api.SignUp(ctx, &cip.SignUpInput{
		ClientId: aws.String(c.clientID),
		Username: aws.String(email),
		Password: aws.String(password),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
			{Name: aws.String("name"), Value: aws.String(username)},
		},
	})
	if err != nil {
		return classify("auth.SignUp", err)
	}
	return nil
}

// ConfirmSignUp confirms a registration with the code Cognito mailed.
func (c *Client) ConfirmSignUp(ctx context.Context, email, code string) error {
	_, err := c.api.ConfirmSignUp(ctx, &cip.ConfirmSignUpInput{
		ClientId:         aws.String(c.clientID),
		Username:         aws.String(email),
		ConfirmationCode: aws.String(code),
	})
	if err != nil {
		return classify("auth.ConfirmSignUp", err)
	}
	return nil
}

// SignIn runs the user password flow.
func (c *Client) SignIn(ctx context.Context, email, password string) (Tokens, error) {
	out, err := c.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(c.clientID),
		AuthParameters: map[string]string{
			"USERNAME": email,
			"PASSWORD": password,
		},
	})
	if err != nil {
		return Tokens{}, classify("auth.SignIn", err)
	}

	res := out.AuthenticationResult
	if res == nil {
		return Tokens{}, &apperr.Error{
			Kind: apperr.KindUnauthorized,
			Op:   "auth.SignIn",
			Err:  fmt.Errorf("sign in needs challenge %q", out.ChallengeName),
			Msg:  "Additional sign in challenge required",
		}
	}
	return Tokens{
		AccessToken:  aws.ToString(res.AccessToken),
		IDToken:      aws.ToString(res.IdToken),
		RefreshToken: aws.ToString(res.RefreshToken),
		TokenType:    aws.ToString(res.TokenType),
		ExpiresIn:    res.ExpiresIn,
	}, nil
}

// SignOut invalidates every token issued for the owner of accessToken.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	_, err := c.api.GlobalSignOut(ctx, &cip.GlobalSignOutInput{
		AccessToken: aws.String(accessToken),
	})
	if err != nil {
		return classify("auth.SignOut", err)
	}
	return nil
}

// classify maps Cognito error codes to failure kinds.
func classify(op string, err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return apperr.E(apperr.KindIdentity, op, err)
	}

	kind := apperr.KindIdentity
	switch apiErr.ErrorCode() {
	case "NotAuthorizedException", "UserNotConfirmedException", "UserNotFoundException", "PasswordResetRequiredException":
		kind = apperr.KindUnauthorized
	case "UsernameExistsException", "AliasExistsException":
		kind = apperr.KindConflict
	case "CodeMismatchException", "ExpiredCodeException", "InvalidPasswordException", "InvalidParameterException":
		kind = apperr.KindInvalidInput
	}
	return &apperr.Error{Kind: kind, Op: op, Err: err, Msg: apiErr.ErrorMessage()}
}
