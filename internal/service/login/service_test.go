package login

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	myredis "zalo_connector/internal/dao/redis"
	"zalo_connector/internal/platform"
	"zalo_connector/internal/service/supervisor"
	"zalo_connector/pkg/errorx"
)

const testAccount = "10000001"

func newTestService(client *fakeClient, store *memSessionStore) (*Service, *supervisor.Registry) {
	registry := supervisor.NewRegistry()
	opts := Options{
		LoginTimeout: time.Second,
		Supervisor: supervisor.Options{
			KeepAliveInterval: time.Hour,
			ReconnectBase:     time.Hour,
			MaxAttempts:       3,
		},
	}
	return NewService(client, store, registry, noopSink{}, nil, opts), registry
}

// 凭证先于连接到达，两者齐备后才落定登录
func TestQRLoginCredentialsBeforeConn(t *testing.T) {
	conn := newFakeConn(testAccount)
	client := &fakeClient{}
	client.loginQRFunc = func(_ context.Context, deviceId, clientId string, onEvent func(platform.QREvent)) (platform.Conn, error) {
		onEvent(platform.QREvent{Type: platform.QRCodeGenerated, Code: "qr-data"})
		onEvent(platform.QREvent{Type: platform.QRGotCredentials, Credentials: &platform.Credentials{
			DeviceId: deviceId, ClientId: clientId, Material: []byte("cookie"),
		}})
		return conn, nil
	}
	store := newMemSessionStore()
	svc, registry := newTestService(client, store)

	var qrCode string
	err := svc.InitiateLogin(context.Background(), "imei-1", "ua-1", func(code string) { qrCode = code })
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return svc.Status(testAccount) == StatusLoggedIn
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, "qr-data", qrCode)
	assert.True(t, store.has(testAccount))
	_, ok := registry.Get(testAccount)
	assert.True(t, ok)
}

// 连接先返回、凭证后到达时同样能落定
func TestQRLoginConnBeforeCredentials(t *testing.T) {
	conn := newFakeConn(testAccount)
	client := &fakeClient{}
	client.loginQRFunc = func(_ context.Context, _, _ string, _ func(platform.QREvent)) (platform.Conn, error) {
		return conn, nil
	}
	store := newMemSessionStore()
	svc, _ := newTestService(client, store)

	require.NoError(t, svc.InitiateLogin(context.Background(), "imei-1", "ua-1", nil))

	// 连接已就绪但凭证未到，整体状态应停在待扫码
	assert.Eventually(t, client.hasHandler, time.Second, 10*time.Millisecond)
	assert.Equal(t, StatusPendingQR, svc.Status(""))
	assert.False(t, store.has(testAccount))

	client.emit(platform.QREvent{Type: platform.QRCodeGenerated, Code: "qr-data"})
	assert.Equal(t, "qr-data", svc.PendingQRCode())

	client.emit(platform.QREvent{Type: platform.QRGotCredentials, Credentials: &platform.Credentials{
		DeviceId: "imei-1", ClientId: "ua-1", Material: []byte("cookie"),
	}})

	assert.Eventually(t, func() bool {
		return svc.Status(testAccount) == StatusLoggedIn
	}, time.Second, 10*time.Millisecond)
	assert.Empty(t, svc.PendingQRCode(), "落定后二维码清空")
}

// 凭证事件重复下发只落定一次
func TestQRLoginFinalizeOnce(t *testing.T) {
	conn := newFakeConn(testAccount)
	client := &fakeClient{}
	client.loginQRFunc = func(_ context.Context, _, _ string, onEvent func(platform.QREvent)) (platform.Conn, error) {
		creds := &platform.Credentials{DeviceId: "imei-1", ClientId: "ua-1", Material: []byte("cookie")}
		onEvent(platform.QREvent{Type: platform.QRGotCredentials, Credentials: creds})
		onEvent(platform.QREvent{Type: platform.QRGotCredentials, Credentials: creds})
		return conn, nil
	}
	store := newMemSessionStore()
	svc, _ := newTestService(client, store)

	require.NoError(t, svc.InitiateLogin(context.Background(), "imei-1", "ua-1", nil))
	assert.Eventually(t, func() bool {
		return svc.Status(testAccount) == StatusLoggedIn
	}, time.Second, 10*time.Millisecond)

	svc.mu.Lock()
	supCount := len(svc.supervisors)
	svc.mu.Unlock()
	assert.Equal(t, 1, supCount)
}

// 无人扫码到整体超时后登录中止，可重新发起
func TestQRLoginTimeoutAborts(t *testing.T) {
	client := &fakeClient{}
	client.loginQRFunc = func(ctx context.Context, _, _ string, _ func(platform.QREvent)) (platform.Conn, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	store := newMemSessionStore()
	registry := supervisor.NewRegistry()
	svc := NewService(client, store, registry, noopSink{}, nil, Options{
		LoginTimeout: 30 * time.Millisecond,
		Supervisor: supervisor.Options{
			KeepAliveInterval: time.Hour,
			ReconnectBase:     time.Hour,
			MaxAttempts:       3,
		},
	})

	require.NoError(t, svc.InitiateLogin(context.Background(), "imei-1", "ua-1", nil))

	assert.Eventually(t, func() bool {
		return svc.Status("") == StatusLoggedOut
	}, time.Second, 10*time.Millisecond)
	assert.False(t, store.has(testAccount))
	assert.Empty(t, svc.PendingQRCode())

	// 超时清理干净，新的扫码流程可以开始
	assert.NoError(t, svc.InitiateLogin(context.Background(), "imei-1", "ua-1", nil))
}

// 进行中的扫码登录排斥新的扫码请求
func TestInitiateLoginRejectsConcurrent(t *testing.T) {
	client := &fakeClient{}
	block := make(chan struct{})
	client.loginQRFunc = func(ctx context.Context, _, _ string, _ func(platform.QREvent)) (platform.Conn, error) {
		<-block
		return nil, errors.New("canceled")
	}
	svc, _ := newTestService(client, newMemSessionStore())

	require.NoError(t, svc.InitiateLogin(context.Background(), "imei-1", "ua-1", nil))
	err := svc.InitiateLogin(context.Background(), "imei-2", "ua-2", nil)
	require.Error(t, err)
	var codeErr *errorx.CodeError
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, errorx.CodeAlreadyLogin, codeErr.Code)
	close(block)
}

// 用户拒绝扫码后登录中止，可重新发起
func TestQRLoginDeclinedAborts(t *testing.T) {
	client := &fakeClient{}
	client.loginQRFunc = func(ctx context.Context, _, _ string, onEvent func(platform.QREvent)) (platform.Conn, error) {
		onEvent(platform.QREvent{Type: platform.QRCodeDeclined})
		return nil, errors.New("declined")
	}
	store := newMemSessionStore()
	svc, _ := newTestService(client, store)

	require.NoError(t, svc.InitiateLogin(context.Background(), "imei-1", "ua-1", nil))
	assert.Eventually(t, func() bool {
		return svc.Status("") == StatusLoggedOut
	}, time.Second, 10*time.Millisecond)
	assert.False(t, store.has(testAccount))

	// 上一轮已清理，新的扫码流程可以开始
	assert.NoError(t, svc.InitiateLogin(context.Background(), "imei-1", "ua-1", nil))
}

// 平台返回非法账号 ID 时放弃登录并注销连接
func TestFinalizeRejectsInvalidAccountId(t *testing.T) {
	conn := newFakeConn("not-a-number")
	client := &fakeClient{}
	client.loginQRFunc = func(_ context.Context, _, _ string, onEvent func(platform.QREvent)) (platform.Conn, error) {
		onEvent(platform.QREvent{Type: platform.QRGotCredentials, Credentials: &platform.Credentials{
			DeviceId: "imei-1", ClientId: "ua-1", Material: []byte("cookie"),
		}})
		return conn, nil
	}
	store := newMemSessionStore()
	svc, registry := newTestService(client, store)

	require.NoError(t, svc.InitiateLogin(context.Background(), "imei-1", "ua-1", nil))
	assert.Eventually(t, func() bool {
		return conn.logoutCount() == 1
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, StatusLoggedOut, svc.Status(""))
	assert.False(t, store.has("not-a-number"))
	assert.Empty(t, registry.Accounts())
}

func TestValidAccountId(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"10000001", true},
		{"12345678901234567890", true},
		{"1234567", false},             // 不足 8 位
		{"123456789012345678901", false}, // 超过 20 位
		{"1000000a", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, validAccountId(tt.id), tt.id)
	}
}

// 凭证导入直接登录，不经过扫码
func TestImportSession(t *testing.T) {
	conn := newFakeConn(testAccount)
	client := &fakeClient{}
	client.loginFunc = func(_ context.Context, creds platform.Credentials) (platform.Conn, error) {
		assert.Equal(t, []byte("cookie"), creds.Material)
		return conn, nil
	}
	store := newMemSessionStore()
	svc, _ := newTestService(client, store)

	err := svc.ImportSession(context.Background(), "imei-1", "ua-1", []byte("cookie"))
	require.NoError(t, err)
	assert.Equal(t, StatusLoggedIn, svc.Status(testAccount))
	assert.True(t, store.has(testAccount))
}

func TestImportSessionRejected(t *testing.T) {
	client := &fakeClient{}
	client.loginFunc = func(context.Context, platform.Credentials) (platform.Conn, error) {
		return nil, platform.ErrSessionExpired
	}
	svc, _ := newTestService(client, newMemSessionStore())

	err := svc.ImportSession(context.Background(), "imei-1", "ua-1", []byte("stale"))
	require.Error(t, err)
	var codeErr *errorx.CodeError
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, errorx.CodeSessionInvalid, codeErr.Code)
}

func TestImportSessionParamCheck(t *testing.T) {
	svc, _ := newTestService(&fakeClient{}, newMemSessionStore())
	assert.Error(t, svc.ImportSession(context.Background(), "", "ua-1", []byte("cookie")))
	assert.Error(t, svc.ImportSession(context.Background(), "imei-1", "ua-1", nil))
}

// 启动恢复：完整会话恢复连接，失效会话被删除，其余账号不受影响
func TestRestoreAll(t *testing.T) {
	store := newMemSessionStore()
	_ = store.Save(context.Background(), &myredis.StoredSession{
		AccountId: testAccount, DeviceId: "imei-1", ClientId: "ua-1",
		CredentialMaterial: []byte("good"), IsActive: true, LoginTime: time.Now(),
	})
	_ = store.Save(context.Background(), &myredis.StoredSession{
		AccountId: "20000002", DeviceId: "imei-2", ClientId: "ua-2",
		CredentialMaterial: []byte("expired"), IsActive: true, LoginTime: time.Now(),
	})
	_ = store.Save(context.Background(), &myredis.StoredSession{
		AccountId: "30000003", // 凭证缺失，恢复前就该删掉
	})

	client := &fakeClient{}
	client.loginFunc = func(_ context.Context, creds platform.Credentials) (platform.Conn, error) {
		if string(creds.Material) == "expired" {
			return nil, platform.ErrSessionExpired
		}
		return newFakeConn(testAccount), nil
	}
	svc, registry := newTestService(client, store)

	svc.RestoreAll(context.Background())

	assert.Equal(t, StatusLoggedIn, svc.Status(testAccount))
	_, ok := registry.Get(testAccount)
	assert.True(t, ok)
	assert.False(t, store.has("20000002"), "被平台拒绝的会话应删除")
	assert.False(t, store.has("30000003"), "不完整的会话应删除")
	assert.True(t, store.has(testAccount))
}

// 主动登出：停监听、平台注销、删持久化会话
func TestLogoutDeletesSession(t *testing.T) {
	conn := newFakeConn(testAccount)
	client := &fakeClient{}
	client.loginFunc = func(context.Context, platform.Credentials) (platform.Conn, error) {
		return conn, nil
	}
	store := newMemSessionStore()
	svc, registry := newTestService(client, store)
	require.NoError(t, svc.ImportSession(context.Background(), "imei-1", "ua-1", []byte("cookie")))

	require.NoError(t, svc.Logout(context.Background(), testAccount))

	assert.Equal(t, StatusLoggedOut, svc.Status(testAccount))
	assert.Equal(t, 1, conn.logoutCount())
	assert.False(t, store.has(testAccount))
	assert.Empty(t, registry.Accounts())

	assert.ErrorIs(t, svc.Logout(context.Background(), testAccount), errorx.ErrNotLoggedIn)
}

// 进程退出：只停监听，会话保留给下次启动恢复
func TestShutdownKeepsSession(t *testing.T) {
	conn := newFakeConn(testAccount)
	client := &fakeClient{}
	client.loginFunc = func(context.Context, platform.Credentials) (platform.Conn, error) {
		return conn, nil
	}
	store := newMemSessionStore()
	svc, _ := newTestService(client, store)
	require.NoError(t, svc.ImportSession(context.Background(), "imei-1", "ua-1", []byte("cookie")))

	svc.Shutdown(context.Background())

	assert.Equal(t, StatusLoggedOut, svc.Status(testAccount))
	assert.Zero(t, conn.logoutCount(), "退出不应触发平台登出")
	assert.True(t, store.has(testAccount), "退出应保留持久化会话")
}
