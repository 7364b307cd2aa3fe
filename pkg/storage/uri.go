package storage

import (
	"fmt"
	"net/url"
	"strings"
)

// SupportedSchemes lists the storage URI schemes [Open] accepts.
var SupportedSchemes = []string{"file", "memory", "s3", "s3+http", "mongodb", "mongodb+srv"}

// URI is a parsed storage location.
type URI struct {
	Scheme string     // backend type
	Host   string     // endpoint for network backends
	Path   string     // directory, or bucket/prefix for S3, or database for MongoDB
	Query  url.Values // backend options such as region or collection
	Raw    string     // original string, used for connection strings and logging
}

// NormalizeURI prepends "file://" to URIs without a scheme, so a bare
// directory works as a storage location.
func NormalizeURI(uri string) string {
	if uri == "" || strings.Contains(uri, "://") {
		return uri
	}
	return "file://" + uri
}

// ParseURI parses and validates a storage URI.
func ParseURI(uri string) (*URI, error) {
	if uri == "" {
		return nil, fmt.Errorf("storage URI cannot be empty")
	}
	normalized := NormalizeURI(uri)
	parsed, err := url.Parse(normalized)
	if err != nil {
		return nil, fmt.Errorf("invalid storage URI: %w", err)
	}
	if err := validateScheme(parsed.Scheme); err != nil {
		return nil, err
	}

	u := &URI{
		Scheme: parsed.Scheme,
		Host:   parsed.Host,
		Path:   parsed.Path,
		Query:  parsed.Query(),
		Raw:    normalized,
	}

	switch u.Scheme {
	case "file":
		// file://meta puts the first segment in Host.
		u.Path = parsed.Host + parsed.Path
		if u.Path == "" {
			u.Path = parsed.Opaque
		}
		u.Host = ""
		if u.Path == "" {
			return nil, fmt.Errorf("file storage URI must have a path")
		}
	case "s3", "s3+http":
		if u.Host == "" {
			return nil, fmt.Errorf("S3 URI must include an endpoint: s3://<endpoint>/<bucket>[/<prefix>]")
		}
		if u.Bucket() == "" {
			return nil, fmt.Errorf("S3 URI must include a bucket: s3://<endpoint>/<bucket>[/<prefix>]")
		}
	case "mongodb", "mongodb+srv":
		if u.Host == "" {
			return nil, fmt.Errorf("MongoDB URI must include a host")
		}
	}
	return u, nil
}

func validateScheme(scheme string) error {
	for _, s := range SupportedSchemes {
		if scheme == s {
			return nil
		}
	}
	return fmt.Errorf("unsupported storage scheme %q; supported schemes: %s",
		scheme, strings.Join(SupportedSchemes, ", "))
}

// Bucket returns the S3 bucket, the first path segment.
func (u *URI) Bucket() string {
	bucket, _, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	return bucket
}

// Prefix returns the S3 object prefix, the path after the bucket, with a
// trailing slash when non-empty.
func (u *URI) Prefix() string {
	_, prefix, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}

// UseSSL reports whether the S3 endpoint is reached over TLS.
func (u *URI) UseSSL() bool {
	return u.Scheme != "s3+http"
}

// Database returns the MongoDB database, defaulting to "mcmeta".
func (u *URI) Database() string {
	if db := strings.Trim(u.Path, "/"); db != "" {
		return db
	}
	return "mcmeta"
}

// Collection returns the MongoDB collection from the "collection" query
// parameter, defaulting to "documents".
func (u *URI) Collection() string {
	if c := u.Query.Get("collection"); c != "" {
		return c
	}
	return "documents"
}

// String returns the URI with credentials removed.
func (u *URI) String() string {
	parsed, err := url.Parse(u.Raw)
	if err != nil {
		return u.Scheme + "://"
	}
	return parsed.Redacted()
}

// ParseToken splits an "ACCESS_KEY:SECRET_KEY" credential. An empty token
// yields empty credentials.
func ParseToken(token string) (access, secret string, err error) {
	if token == "" {
		return "", "", nil
	}
	access, secret, ok := strings.Cut(token, ":")
	if !ok || access == "" || secret == "" {
		return "", "", fmt.Errorf("storage token must be ACCESS_KEY:SECRET_KEY")
	}
	return access, secret, nil
}
