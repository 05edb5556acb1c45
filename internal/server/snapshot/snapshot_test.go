package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/seedvault/internal/keys"
	"github.com/dmitrijs2005/seedvault/internal/server/models"
)

type fakeSource struct {
	accs []*models.Account
	err  error
}

func (f fakeSource) Accounts(context.Context) ([]*models.Account, error) { return f.accs, f.err }

type fakeUploader struct {
	mu     sync.Mutex
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (f *fakeUploader) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, b)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeUploader) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inputs)
}

func TestKey(t *testing.T) {
	at := time.Date(2024, time.March, 7, 23, 0, 0, 0, time.FixedZone("x", -3*3600))
	re := regexp.MustCompile(`^snapshots/2024/03/08/[0-9a-f-]{36}\.json$`)
	assert.Regexp(t, re, Key(at))
	assert.NotEqual(t, Key(at), Key(at))
}

func TestExport(t *testing.T) {
	acc := &models.Account{Address: keys.PublicKey{1}, Lamports: 1_000_000, Owner: keys.PublicKey{2}}
	up := &fakeUploader{}
	s := NewSnapshotter(fakeSource{accs: []*models.Account{acc}}, up, "bucket", nil)

	key, err := s.Export(context.Background())
	require.NoError(t, err)

	require.Len(t, up.inputs, 1)
	assert.Equal(t, "bucket", aws.ToString(up.inputs[0].Bucket))
	assert.Equal(t, key, aws.ToString(up.inputs[0].Key))
	assert.Equal(t, int64(len(up.bodies[0])), aws.ToInt64(up.inputs[0].ContentLength))

	var got []*models.Account
	require.NoError(t, json.Unmarshal(up.bodies[0], &got))
	require.Len(t, got, 1)
	assert.Equal(t, acc.Address, got[0].Address)
	assert.Equal(t, acc.Lamports, got[0].Lamports)
}

func TestExport_EmptyLedgerWritesArray(t *testing.T) {
	up := &fakeUploader{}
	s := NewSnapshotter(fakeSource{}, up, "bucket", nil)

	_, err := s.Export(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(up.bodies[0]))
}

func TestExport_Errors(t *testing.T) {
	boom := errors.New("boom")

	_, err := NewSnapshotter(fakeSource{err: boom}, &fakeUploader{}, "b", nil).Export(context.Background())
	assert.ErrorIs(t, err, boom)

	_, err = NewSnapshotter(fakeSource{}, &fakeUploader{err: boom}, "b", nil).Export(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestRun(t *testing.T) {
	up := &fakeUploader{}
	s := NewSnapshotter(fakeSource{}, up, "bucket", nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, 5*time.Millisecond) }()

	require.Eventually(t, func() bool { return up.count() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestNewS3Client(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	var lo awsconfig.LoadOptions
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		return aws.Config{Region: lo.Region, Credentials: lo.Credentials}, nil
	}
	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return s3.NewFromConfig(cfg, optFns...)
	}

	c, err := NewS3Client(context.Background(), S3Settings{
		Region: "eu-west-1", User: "u", Password: "p", BaseEndpoint: "http://minio:9000",
	})
	require.NoError(t, err)
	require.NotNil(t, c)

	assert.Equal(t, "eu-west-1", lo.Region)
	creds, err := lo.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u", creds.AccessKeyID)
	assert.Equal(t, "p", creds.SecretAccessKey)
	assert.Equal(t, "http://minio:9000", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)
}

func TestNewS3Client_ConfigError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })

	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}
	_, err := NewS3Client(context.Background(), S3Settings{})
	assert.ErrorContains(t, err, "no config")
}
