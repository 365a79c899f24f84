package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pawme/pawme-backend/internal/config"
	"github.com/pawme/pawme-backend/internal/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrUnknownPlatform = errors.New("unknown social platform")
	ErrInvalidState    = errors.New("invalid or expired oauth state")
	ErrNotConnected    = errors.New("platform is not connected")
)

// tiktokEndpoint is the TikTok v2 OAuth endpoint pair.
var tiktokEndpoint = oauth2.Endpoint{
	AuthURL:  "https://www.tiktok.com/v2/auth/authorize/",
	TokenURL: "https://open.tiktokapis.com/v2/oauth/token/",
}

// SocialService runs the per-platform OAuth dance and the stats refresh for
// the admin dashboard widgets. OAuth state lives in the cache with a 10
// minute TTL; an expired state is rejected. Tokens are refreshed proactively
// through the oauth2 TokenSource before expiry, and rotated tokens are
// persisted.
type SocialService struct {
	db    *gorm.DB
	cfg   *config.Config
	cache Cache
}

func NewSocialService(db *gorm.DB, cfg *config.Config, cache Cache) *SocialService {
	return &SocialService{db: db, cfg: cfg, cache: cache}
}

func (s *SocialService) oauthConfig(platform string) (*oauth2.Config, error) {
	redirect := fmt.Sprintf("%s/api/social/%s/callback", s.cfg.OAuthRedirectBase, platform)

	switch platform {
	case models.PlatformYouTube:
		return &oauth2.Config{
			ClientID:     s.cfg.YouTubeClientID,
			ClientSecret: s.cfg.YouTubeClientSecret,
			RedirectURL:  redirect,
			Scopes:       []string{"https://www.googleapis.com/auth/youtube.readonly"},
			Endpoint:     google.Endpoint,
		}, nil
	case models.PlatformTikTok:
		return &oauth2.Config{
			ClientID:     s.cfg.TikTokClientKey,
			ClientSecret: s.cfg.TikTokClientSecret,
			RedirectURL:  redirect,
			Scopes:       []string{"user.info.basic", "user.info.stats"},
			Endpoint:     tiktokEndpoint,
		}, nil
	default:
		return nil, ErrUnknownPlatform
	}
}

// AuthURL starts the authorization-code flow and stores the CSRF state.
func (s *SocialService) AuthURL(ctx context.Context, platform string) (url, state string, err error) {
	conf, err := s.oauthConfig(platform)
	if err != nil {
		return "", "", err
	}

	state = uuid.NewString()
	if err := s.cache.Set(ctx, "oauth:state:"+state, platform, 10*time.Minute); err != nil {
		return "", "", fmt.Errorf("failed to store oauth state: %w", err)
	}

	opts := []oauth2.AuthCodeOption{oauth2.AccessTypeOffline}
	if platform == models.PlatformTikTok {
		// TikTok names the client id parameter client_key.
		opts = append(opts, oauth2.SetAuthURLParam("client_key", s.cfg.TikTokClientKey))
	}
	return conf.AuthCodeURL(state, opts...), state, nil
}

// HandleCallback validates state, exchanges the code, fetches one
// profile-identifying call, and persists the connection.
func (s *SocialService) HandleCallback(ctx context.Context, platform, code, state string) (*models.SocialConnection, error) {
	var storedPlatform string
	if err := s.cache.Get(ctx, "oauth:state:"+state, &storedPlatform); err != nil {
		return nil, ErrInvalidState
	}
	if storedPlatform != platform {
		return nil, ErrInvalidState
	}
	_ = s.cache.Delete(ctx, "oauth:state:"+state)

	conf, err := s.oauthConfig(platform)
	if err != nil {
		return nil, err
	}

	var opts []oauth2.AuthCodeOption
	if platform == models.PlatformTikTok {
		opts = append(opts, oauth2.SetAuthURLParam("client_key", s.cfg.TikTokClientKey))
	}
	token, err := conf.Exchange(ctx, code, opts...)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	displayName, stats, err := s.fetchProfile(ctx, platform, conf, token)
	if err != nil {
		return nil, err
	}

	conn := models.SocialConnection{
		Platform:     platform,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
		DisplayName:  displayName,
	}
	if stats != nil {
		if b, err := json.Marshal(stats); err == nil {
			conn.Stats = datatypes.JSON(b)
			now := time.Now().UTC()
			conn.StatsSyncedAt = &now
		}
	}

	if err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&conn).Error; err != nil {
		return nil, fmt.Errorf("failed to persist connection: %w", err)
	}
	return &conn, nil
}

// Get returns the stored connection for a platform, if any.
func (s *SocialService) Get(platform string) (*models.SocialConnection, error) {
	var conn models.SocialConnection
	err := s.db.First(&conn, "platform = ?", platform).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotConnected
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load connection: %w", err)
	}
	return &conn, nil
}

// RefreshStats fetches fresh platform stats, refreshing the access token
// first when it is expired or close to expiry.
func (s *SocialService) RefreshStats(ctx context.Context, platform string) (*models.SocialConnection, error) {
	conn, err := s.Get(platform)
	if err != nil {
		return nil, err
	}

	conf, err := s.oauthConfig(platform)
	if err != nil {
		return nil, err
	}

	token := &oauth2.Token{
		AccessToken:  conn.AccessToken,
		RefreshToken: conn.RefreshToken,
		Expiry:       conn.ExpiresAt,
	}
	fresh, err := conf.TokenSource(ctx, token).Token()
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}

	displayName, stats, err := s.fetchProfile(ctx, platform, conf, fresh)
	if err != nil {
		return nil, err
	}

	conn.AccessToken = fresh.AccessToken
	if fresh.RefreshToken != "" {
		conn.RefreshToken = fresh.RefreshToken
	}
	conn.ExpiresAt = fresh.Expiry
	if displayName != "" {
		conn.DisplayName = displayName
	}
	if stats != nil {
		if b, err := json.Marshal(stats); err == nil {
			conn.Stats = datatypes.JSON(b)
			now := time.Now().UTC()
			conn.StatsSyncedAt = &now
		}
	}

	if err := s.db.Save(conn).Error; err != nil {
		return nil, fmt.Errorf("failed to persist refreshed connection: %w", err)
	}
	return conn, nil
}

// Disconnect removes the stored credential.
func (s *SocialService) Disconnect(platform string) error {
	res := s.db.Delete(&models.SocialConnection{}, "platform = ?", platform)
	if res.Error != nil {
		return fmt.Errorf("failed to disconnect: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotConnected
	}
	return nil
}

func (s *SocialService) fetchProfile(ctx context.Context, platform string, conf *oauth2.Config, token *oauth2.Token) (string, map[string]any, error) {
	client := conf.Client(ctx, token)
	client.Timeout = 15 * time.Second

	switch platform {
	case models.PlatformYouTube:
		return fetchYouTubeChannel(client)
	case models.PlatformTikTok:
		return fetchTikTokUser(client)
	default:
		return "", nil, ErrUnknownPlatform
	}
}

func fetchYouTubeChannel(client *http.Client) (string, map[string]any, error) {
	resp, err := client.Get("https://www.googleapis.com/youtube/v3/channels?part=snippet,statistics&mine=true")
	if err != nil {
		return "", nil, fmt.Errorf("youtube api call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read youtube response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("youtube api returned %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Items []struct {
			Snippet struct {
				Title string `json:"title"`
			} `json:"snippet"`
			Statistics struct {
				SubscriberCount string `json:"subscriberCount"`
				ViewCount       string `json:"viewCount"`
				VideoCount      string `json:"videoCount"`
			} `json:"statistics"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", nil, fmt.Errorf("failed to decode youtube response: %w", err)
	}
	if len(payload.Items) == 0 {
		return "", nil, errors.New("no youtube channel on this account")
	}

	item := payload.Items[0]
	stats := map[string]any{
		"subscribers": item.Statistics.SubscriberCount,
		"views":       item.Statistics.ViewCount,
		"videos":      item.Statistics.VideoCount,
	}
	return item.Snippet.Title, stats, nil
}

func fetchTikTokUser(client *http.Client) (string, map[string]any, error) {
	resp, err := client.Get("https://open.tiktokapis.com/v2/user/info/?fields=display_name,follower_count,likes_count,video_count")
	if err != nil {
		return "", nil, fmt.Errorf("tiktok api call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read tiktok response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("tiktok api returned %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Data struct {
			User struct {
				DisplayName   string `json:"display_name"`
				FollowerCount int64  `json:"follower_count"`
				LikesCount    int64  `json:"likes_count"`
				VideoCount    int64  `json:"video_count"`
			} `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", nil, fmt.Errorf("failed to decode tiktok response: %w", err)
	}

	u := payload.Data.User
	stats := map[string]any{
		"followers": u.FollowerCount,
		"likes":     u.LikesCount,
		"videos":    u.VideoCount,
	}
	return u.DisplayName, stats, nil
}
