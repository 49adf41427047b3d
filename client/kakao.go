// Package client holds the HTTP clients for the third-party services the
// backend depends on: the Kakao identity provider and the health.kr
// drug-information search.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const kakaoUserInfoURL = "https://kapi.kakao.com/v2/user/me"

// Normalized provider failures. Everything the provider can do wrong maps
// onto one of these three.
var (
	ErrProviderUnauthorized = errors.New("provider rejected the access token")
	ErrProviderUnavailable  = errors.New("provider unavailable")
	ErrProviderUnknown      = errors.New("unexpected provider response")
)

// KakaoUser is the subset of the provider's user-info payload the backend
// needs. Nickname and ProfileImageURL are optional on the provider side.
type KakaoUser struct {
	KakaoID         string
	Nickname        string
	ProfileImageURL string
}

// KakaoClient exchanges a Kakao access token for identity claims.
type KakaoClient struct {
	userInfoURL string
	client      *http.Client
}

// NewKakaoClient returns a client against the production user-info endpoint.
func NewKakaoClient() *KakaoClient {
	return NewKakaoClientWithURL(kakaoUserInfoURL)
}

// NewKakaoClientWithURL allows tests to point the client at a stub server.
func NewKakaoClientWithURL(url string) *KakaoClient {
	return &KakaoClient{
		userInfoURL: url,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

// kakaoUserInfoResponse mirrors the provider payload. The numeric id is the
// stable subject; profile fields live under kakao_account.profile.
type kakaoUserInfoResponse struct {
	ID           int64 `json:"id"`
	KakaoAccount struct {
		Profile struct {
			Nickname        string `json:"nickname"`
			ProfileImageURL string `json:"profile_image_url"`
		} `json:"profile"`
	} `json:"kakao_account"`
}

// UserInfo calls the provider's user-info endpoint with the given access
// token. Non-2xx responses are mapped to the normalized error set.
func (k *KakaoClient) UserInfo(ctx context.Context, accessToken string) (*KakaoUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := k.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrProviderUnauthorized
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", ErrProviderUnknown, resp.StatusCode)
	}

	var parsed kakaoUserInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnknown, err)
	}
	if parsed.ID == 0 {
		return nil, fmt.Errorf("%w: missing user id", ErrProviderUnknown)
	}

	return &KakaoUser{
		KakaoID:         strconv.FormatInt(parsed.ID, 10),
		Nickname:        parsed.KakaoAccount.Profile.Nickname,
		ProfileImageURL: parsed.KakaoAccount.Profile.ProfileImageURL,
	}, nil
}
