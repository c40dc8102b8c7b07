package staging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/stagebridge/stagebridge/internal/common"
	"github.com/stagebridge/stagebridge/internal/logging"
)

// Test seams for AWS client construction.
var (
	loadDefaultAWSConfig  = awsconfig.LoadDefaultConfig
	newS3ClientFromConfig = s3.NewFromConfig
)

// s3API is the subset of the S3 client the backend needs. Tests install a
// stub here.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// S3Options configures the object-storage staging backend.
type S3Options struct {
	Bucket       string
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
}

// S3Repository is the object-storage staging backend. Staged files live under
// "{user}/{addr}/{profile}-{index}/repository_contents/" with a sibling
// "repository_state" marker object. The index map is instance state, exactly
// as in the local backend.
type S3Repository struct {
	client s3API
	bucket string
	log    logging.Logger

	mu      sync.RWMutex
	indexes map[string]uint32
}

func NewS3Repository(ctx context.Context, opts S3Options, log logging.Logger) (*S3Repository, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("%w: loading aws config: %v", common.ErrorStorage, err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return newS3Repository(client, opts.Bucket, log), nil
}

func newS3Repository(client s3API, bucket string, log logging.Logger) *S3Repository {
	return &S3Repository{
		client:  client,
		bucket:  bucket,
		log:     log.With("module", "staging_s3"),
		indexes: make(map[string]uint32),
	}
}

func (r *S3Repository) nextIndex(userID, clientAddr, profileID string) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := indexKey(userID, clientAddr, profileID)
	if current, ok := r.indexes[k]; ok {
		r.indexes[k] = current + 1
	} else {
		r.indexes[k] = 0
	}
	return r.indexes[k]
}

func (r *S3Repository) currentDefaultIndex(userID, clientAddr string) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := indexKey(userID, clientAddr, NoProfile)
	if _, ok := r.indexes[k]; !ok {
		r.indexes[k] = 0
	}
	return r.indexes[k]
}

func (r *S3Repository) validate(key RepositoryKey) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	max, ok := r.indexes[indexKey(key.UserID, key.ClientAddr, key.ProfileID())]
	if !ok {
		return fmt.Errorf("%w: repository %s does not exist", common.ErrorValidation, key)
	}
	if key.Index > max {
		return fmt.Errorf("%w: repository %s exceeds index %d", common.ErrorValidation, key, max)
	}
	return nil
}

func (r *S3Repository) prefix(key RepositoryKey) string {
	return fmt.Sprintf("%s/%s/%s", key.UserID, key.ClientAddr, key.RepositoryID())
}

func (r *S3Repository) contentsPrefix(key RepositoryKey) string {
	return r.prefix(key) + "/" + repositoryFolder + "/"
}

func (r *S3Repository) stateKey(key RepositoryKey) string {
	return r.prefix(key) + "/" + repositoryStateFile
}

func (r *S3Repository) Start(ctx context.Context, userID, clientAddr, profileID string) (RepositoryKey, error) {
	index := r.nextIndex(userID, clientAddr, profileID)
	key := NewRepositoryKey(userID, clientAddr, profileID, index)
	r.log.Debug(ctx, "starting repository", "key", key.String())

	if err := r.writeState(ctx, key, StateOpen); err != nil {
		return RepositoryKey{}, err
	}
	return key, nil
}

func (r *S3Repository) OpenDefault(ctx context.Context, userID, clientAddr string) (RepositoryKey, error) {
	index := r.currentDefaultIndex(userID, clientAddr)
	key := NewRepositoryKey(userID, clientAddr, "", index)
	r.log.Debug(ctx, "opening default repository", "key", key.String())

	if err := r.writeState(ctx, key, StateOpen); err != nil {
		return RepositoryKey{}, err
	}
	return key, nil
}

func (r *S3Repository) AddFile(ctx context.Context, authorizedNamespaces []string, key RepositoryKey, relativePath string, contents io.Reader) error {
	r.log.Debug(ctx, "adding file to repository", "key", key.String(), "path", relativePath)

	if err := r.requireOpen(ctx, key); err != nil {
		return err
	}
	if key.profileID != "" && len(authorizedNamespaces) > 0 {
		authorized := false
		for _, ns := range authorizedNamespaces {
			if ns == key.profileID {
				authorized = true
				break
			}
		}
		if !authorized {
			return fmt.Errorf("%w: namespace %s not authorized", common.ErrorValidation, key.profileID)
		}
	}

	rel, err := safeRelativePath(relativePath)
	if err != nil {
		return err
	}

	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.contentsPrefix(key) + rel),
		Body:   contents,
	})
	if err != nil {
		return fmt.Errorf("%w: putting %s: %v", common.ErrorStorage, rel, err)
	}
	return nil
}

func (r *S3Repository) Finish(ctx context.Context, key RepositoryKey) (*Archive, error) {
	r.log.Debug(ctx, "finishing repository", "key", key.String())

	if err := r.requireOpen(ctx, key); err != nil {
		return nil, err
	}

	prefix := r.contentsPrefix(key)
	archive := NewArchive()
	var staged []types.ObjectIdentifier

	var continuation *string
	for {
		page, err := r.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(r.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: continuation,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: listing %s: %v", common.ErrorStorage, prefix, err)
		}

		for _, obj := range page.Contents {
			objKey := aws.ToString(obj.Key)
			out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
				Bucket: aws.String(r.bucket),
				Key:    aws.String(objKey),
			})
			if err != nil {
				return nil, fmt.Errorf("%w: getting %s: %v", common.ErrorStorage, objKey, err)
			}
			err = archive.AddFile(strings.TrimPrefix(objKey, prefix), out.Body)
			out.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("%w: packaging %s: %v", common.ErrorStorage, objKey, err)
			}
			staged = append(staged, types.ObjectIdentifier{Key: aws.String(objKey)})
		}

		if page.IsTruncated == nil || !*page.IsTruncated {
			break
		}
		continuation = page.NextContinuationToken
	}

	if len(staged) > 0 {
		_, err := r.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(r.bucket),
			Delete: &types.Delete{Objects: staged},
		})
		if err != nil {
			return nil, fmt.Errorf("%w: deleting staged objects: %v", common.ErrorStorage, err)
		}
	}

	if err := r.writeState(ctx, key, StateClosed); err != nil {
		return nil, err
	}

	r.log.Debug(ctx, "closed repository", "key", key.String())
	return archive, nil
}

func (r *S3Repository) Release(ctx context.Context, key RepositoryKey) error {
	r.log.Debug(ctx, "releasing repository", "key", key.String())

	if err := r.validate(key); err != nil {
		return err
	}
	return r.writeState(ctx, key, StateReleased)
}

func (r *S3Repository) GetState(ctx context.Context, key RepositoryKey) (RepositoryState, error) {
	if err := r.validate(key); err != nil {
		return StateNotFound, nil
	}
	return r.readState(ctx, key)
}

func (r *S3Repository) requireOpen(ctx context.Context, key RepositoryKey) error {
	if err := r.validate(key); err != nil {
		return err
	}
	state, err := r.readState(ctx, key)
	if err != nil {
		return err
	}
	if state != StateOpen {
		return fmt.Errorf("%w: repository %s is %s, not open", common.ErrorValidation, key, state)
	}
	return nil
}

func (r *S3Repository) writeState(ctx context.Context, key RepositoryKey, state RepositoryState) error {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.stateKey(key)),
		Body:   bytes.NewReader([]byte(state.String())),
	})
	if err != nil {
		return fmt.Errorf("%w: writing state of %s: %v", common.ErrorStorage, key, err)
	}
	return nil
}

func (r *S3Repository) readState(ctx context.Context, key RepositoryKey) (RepositoryState, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.stateKey(key)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return StateNotFound, nil
		}
		return 0, fmt.Errorf("%w: reading state of %s: %v", common.ErrorStorage, key, err)
	}
	defer out.Body.Close()

	b, err := io.ReadAll(out.Body)
	if err != nil {
		return 0, fmt.Errorf("%w: reading state of %s: %v", common.ErrorStorage, key, err)
	}
	state, err := ParseRepositoryState(string(b))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrorStorage, err)
	}
	return state, nil
}
