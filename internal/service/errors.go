package service

import "errors"

// 业务层错误，handler 据此映射 HTTP 状态码。
// 登录失败刻意不区分"用户不存在"和"密码错误"，避免用户名枚举。
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUsernameTaken      = errors.New("username taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
