package rekognition

// Config holds configuration for the AWS Rekognition detector
type Config struct {
	// Region is the AWS region where Rekognition is called (e.g., "us-east-1")
	Region string

	// MinQuality drops faces whose combined brightness/sharpness score is below it (0.0 - 1.0)
	MinQuality float64
}

// DefaultConfig returns a Config with default values
func DefaultConfig() Config {
	return Config{
		Region:     "us-east-1",
		MinQuality: 0,
	}
}
