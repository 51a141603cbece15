package service

import (
	"StreamHub/internal/apperror"
	"StreamHub/internal/auth"
	"StreamHub/internal/model"
	"StreamHub/internal/repository"
	"StreamHub/pkg/logger"
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// RegisterInput 注册需要的全部信息，CoverImage可选
type RegisterInput struct {
	Fullname   string
	Username   string
	Email      string
	Password   string
	Avatar     *Upload
	CoverImage *Upload
}

// 用户服务接口：账号、会话和个人资料
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	// username和email给一个就行
	Login(ctx context.Context, username, email, password string) (*model.User, *auth.TokenPair, error)
	Logout(ctx context.Context, userID uint64) error
	RefreshToken(ctx context.Context, raw string) (*auth.TokenPair, error)
	ChangePassword(ctx context.Context, userID uint64, oldPassword, newPassword string) error
	CurrentUser(ctx context.Context, userID uint64) (*model.User, error)
	// 空字符串表示不修改，但至少要改一项
	UpdateAccountDetails(ctx context.Context, userID uint64, fullname, email string) (*model.User, error)
	UpdateAvatar(ctx context.Context, userID uint64, up *Upload) (*model.User, error)
	UpdateCoverImage(ctx context.Context, userID uint64, up *Upload) (*model.User, error)
	RecordView(ctx context.Context, userID, videoID uint64) error
}

// 用户服务包装
type userService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenManager
	assets   AssetService
}

func NewUserService(userRepo repository.UserRepository, tokens *auth.TokenManager, assets AssetService) UserService {
	return &userService{userRepo: userRepo, tokens: tokens, assets: assets}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func validEmail(email string) bool {
	return strings.Contains(email, "@") && !strings.ContainsAny(email, " \t\n")
}

// 注册逻辑：1、校验必填项和邮箱格式 2、用户名/邮箱查重 3、上传头像和封面 4、密码加密存储 5、插入数据库后重新读一遍
func (s *userService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if isBlank(in.Fullname) || isBlank(in.Username) || isBlank(in.Email) || isBlank(in.Password) {
		return nil, apperror.Validation("全部字段都是必填的")
	}
	username, email := normalize(in.Username), normalize(in.Email)
	if !validEmail(email) {
		return nil, apperror.Validation("邮箱格式不正确")
	}
	if in.Avatar == nil {
		return nil, apperror.Validation("头像是必填的")
	}

	_, err := s.userRepo.FindByUsernameOrEmail(ctx, username, email)
	if err == nil {
		return nil, apperror.Conflict("用户名或邮箱已存在")
	}
	if !repository.IsNotFound(err) {
		return nil, storeError(err, "")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	avatar, err := s.assets.Store(ctx, FolderAvatars, in.Avatar)
	if err != nil {
		return nil, err
	}
	var cover string
	if in.CoverImage != nil {
		if cover, err = s.assets.Store(ctx, FolderCovers, in.CoverImage); err != nil {
			s.assets.Discard(ctx, avatar, "register failed")
			return nil, err
		}
	}

	newUser := &model.User{
		Username:   username,
		Email:      email,
		Fullname:   strings.TrimSpace(in.Fullname),
		Password:   string(hashedPassword),
		Avatar:     avatar,
		CoverImage: cover,
	}
	// 查重和插入之间有并发窗口，最终靠唯一索引兜底，冲突同样是Conflict
	if err := s.userRepo.Create(ctx, newUser); err != nil {
		s.assets.Discard(ctx, avatar, "register failed")
		s.assets.Discard(ctx, cover, "register failed")
		if repository.IsDuplicateKey(err) {
			return nil, apperror.Conflict("用户名或邮箱已存在")
		}
		return nil, storeError(err, "")
	}
	logger.Log.WithField("user_id", newUser.ID).Info("用户注册成功")
	return s.CurrentUser(ctx, newUser.ID)
}

// 登录逻辑：1、按用户名或邮箱找用户 2、bcrypt比对密码 3、签发一对令牌，库里只存refresh token的摘要
func (s *userService) Login(ctx context.Context, username, email, password string) (*model.User, *auth.TokenPair, error) {
	username, email = normalize(username), normalize(email)
	if username == "" && email == "" {
		return nil, nil, apperror.Validation("用户名或邮箱至少填一个")
	}
	if isBlank(password) {
		return nil, nil, apperror.Validation("密码是必填的")
	}

	user, err := s.userRepo.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, nil, storeError(err, "用户不存在")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil, apperror.Unauthorized("用户名或密码错误")
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (s *userService) issuePair(ctx context.Context, user *model.User) (*auth.TokenPair, error) {
	access, err := s.tokens.IssueAccess(user.ID, user.Username, user.Email, user.Fullname)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	refresh, err := s.tokens.IssueRefresh(user.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	hash := auth.HashRefresh(refresh)
	if err := s.userRepo.SetRefreshToken(ctx, user.ID, &hash); err != nil {
		return nil, storeError(err, "用户不存在")
	}
	return &auth.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *userService) Logout(ctx context.Context, userID uint64) error {
	return storeError(s.userRepo.SetRefreshToken(ctx, userID, nil), "用户不存在")
}

// 刷新令牌：1、校验签名和过期时间 2、和库里存的摘要比对 3、轮换一对新令牌
// 任何一步失败都是Unauthorized
func (s *userService) RefreshToken(ctx context.Context, raw string) (*auth.TokenPair, error) {
	if isBlank(raw) {
		return nil, apperror.Unauthorized("缺少refresh token")
	}
	userID, err := s.tokens.ParseRefresh(raw)
	if err != nil {
		return nil, apperror.Unauthorized("refresh token无效或已过期")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperror.Unauthorized("refresh token无效或已过期")
		}
		return nil, storeError(err, "")
	}
	if user.RefreshToken == nil || *user.RefreshToken != auth.HashRefresh(raw) {
		return nil, apperror.Unauthorized("refresh token已被使用或已注销")
	}
	return s.issuePair(ctx, user)
}

func (s *userService) ChangePassword(ctx context.Context, userID uint64, oldPassword, newPassword string) error {
	if isBlank(oldPassword) || isBlank(newPassword) {
		return apperror.Validation("新旧密码都是必填的")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return storeError(err, "用户不存在")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return apperror.Validation("旧密码不正确")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperror.Internal(err)
	}
	return storeError(s.userRepo.Update(ctx, userID, map[string]interface{}{"password": string(hashed)}), "用户不存在")
}

func (s *userService) CurrentUser(ctx context.Context, userID uint64) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "用户不存在")
	}
	return user, nil
}

func (s *userService) UpdateAccountDetails(ctx context.Context, userID uint64, fullname, email string) (*model.User, error) {
	fields := map[string]interface{}{}
	if !isBlank(fullname) {
		fields["fullname"] = strings.TrimSpace(fullname)
	}
	if !isBlank(email) {
		email = normalize(email)
		if !validEmail(email) {
			return nil, apperror.Validation("邮箱格式不正确")
		}
		fields["email"] = email
	}
	if len(fields) == 0 {
		return nil, apperror.Validation("至少修改一项")
	}

	if err := s.userRepo.Update(ctx, userID, fields); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, apperror.Conflict("邮箱已被占用")
		}
		return nil, storeError(err, "用户不存在")
	}
	return s.CurrentUser(ctx, userID)
}

func (s *userService) UpdateAvatar(ctx context.Context, userID uint64, up *Upload) (*model.User, error) {
	return s.replaceImage(ctx, userID, up, FolderAvatars, "avatar")
}

func (s *userService) UpdateCoverImage(ctx context.Context, userID uint64, up *Upload) (*model.User, error) {
	return s.replaceImage(ctx, userID, up, FolderCovers, "cover_image")
}

// 替换图片：1、上传新文件 2、更新用户行 3、旧文件交给清理队列
func (s *userService) replaceImage(ctx context.Context, userID uint64, up *Upload, folder, column string) (*model.User, error) {
	before, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	location, err := s.assets.Store(ctx, folder, up)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, userID, map[string]interface{}{column: location}); err != nil {
		s.assets.Discard(ctx, location, "update failed")
		return nil, storeError(err, "用户不存在")
	}

	old := before.Avatar
	if column == "cover_image" {
		old = before.CoverImage
	}
	s.assets.Discard(ctx, old, "replaced "+column)
	return s.CurrentUser(ctx, userID)
}

func (s *userService) RecordView(ctx context.Context, userID, videoID uint64) error {
	if userID == 0 {
		return errors.New("record view: missing user")
	}
	return storeError(s.userRepo.AppendWatchHistory(ctx, userID, videoID), "")
}
