// Package s3 provides the S3 bucket type used for pipeline artifacts.
package s3

// Bucket_VersioningConfiguration toggles object versioning.
type Bucket_VersioningConfiguration struct {
	Status string
}

// Bucket represents an AWS::S3::Bucket resource.
type Bucket struct {
	BucketName              any
	VersioningConfiguration *Bucket_VersioningConfiguration
	Tags                    []any
}

// ResourceType returns the CloudFormation type.
func (Bucket) ResourceType() string { return "AWS::S3::Bucket" }
