package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

// FaceCoordsData is one detection
type FaceCoordsData struct {
	Confidence float32 `json:"confidence" example:"0.93"`
	Width      int     `json:"width" example:"128"`
	Height     int     `json:"height" example:"160"`
}

// DetectData lists detections, most confident first
type DetectData struct {
	Data    []FaceCoordsData `json:"data"`
	Message string           `json:"message" example:"success"`
}

// NoDetectionData is returned with 200 when nothing was found
type NoDetectionData struct {
	Message string `json:"message" example:"no detections were found, please try with a better image!"`
}

// LargestFaceData carries the cropped face as a base64 PNG
type LargestFaceData struct {
	Coords      FaceCoordsData `json:"coords"`
	CroppedFace string         `json:"cropped_face" example:"iVBORw0KGgoAAAANSUhEUgAA..."`
	Rotation    int            `json:"rotation" example:"0"`
	Message     string         `json:"message" example:"success"`
}

// EmbeddingData is a 512 float face vector
type EmbeddingData struct {
	Data []float32 `json:"data"`
}

// FaceInsertBody is the store insert request
type FaceInsertBody struct {
	Embedding []float32 `json:"embedding"`
	Name      string    `json:"name" example:"placeholder"`
	Gender    int       `json:"gender" example:"1"`
	FaceUUID  string    `json:"face_uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
}

type FaceLookupBody struct {
	FaceUUID string `json:"face_uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
}

type SimilarByUUIDBody struct {
	FaceUUID string `json:"face_uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Count    int    `json:"count" example:"5"`
}

type SimilarByEmbeddingBody struct {
	FaceEmbedding []float32 `json:"face_embedding"`
	Count         int       `json:"count" example:"5"`
}

// StatusData acknowledges store writes
type StatusData struct {
	Status  int    `json:"status" example:"201"`
	Message string `json:"message" example:"success"`
}

// FaceDetailData is a stored face
type FaceDetailData struct {
	ID        int64     `json:"id" example:"42"`
	Name      string    `json:"name" example:"placeholder"`
	FaceUUID  string    `json:"face_uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Gender    int       `json:"gender" example:"1"`
	Embedding []float32 `json:"embedding"`
}

// SimilarFaceData is one ranked match
type SimilarFaceData struct {
	Face             FaceDetailData `json:"face"`
	CosineSimilarity float64        `json:"cosine_similarity" example:"0.87"`
}

type AddFaceData struct {
	ID      string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Message string `json:"message" example:"success"`
}

var (
	multipart = []mime.MIME{mime.MIME("multipart/form-data")}
	jsonMIME  = []mime.MIME{mime.JSON}

	internalError = response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error")
	missingImage  = response.New(ErrorResponse{Code: "MISSING_IMAGE", Message: "Multipart field 'input' is required"}, "400", "Bad Request")
	decodeFailed  = response.New(ErrorResponse{Code: "DECODE_FAILED", Message: "Image could not be decoded"}, "422", "Unprocessable Entity")
)

// Service names accepted by New
const (
	FaceAPI  = "face-api"
	StoreAPI = "store-api"
	Gateway  = "gateway"
)

// New builds the swagger document of one service
func New(service, host string) *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Soma " + service,
		Version:     "v1.0.0",
		Description: "Face detection, embedding and similarity search",
		Host:        host,
		Path:        "/",
	})

	switch service {
	case FaceAPI:
		sw.AddEndpoints(faceEndpoints())
	case StoreAPI:
		sw.AddEndpoints(storeEndpoints())
	case Gateway:
		sw.AddEndpoints(gatewayEndpoints())
	}

	return sw
}

func faceEndpoints() []*endpoint.EndPoint {
	detect := func(path, summary string) *endpoint.EndPoint {
		return endpoint.New(
			endpoint.POST,
			path,
			endpoint.WithTags("Detection"),
			endpoint.WithSummary(summary),
			endpoint.WithDescription("Multipart field 'input' carries the image. Returns every face above the detection threshold."),
			endpoint.WithConsume(multipart),
			endpoint.WithProduce(jsonMIME),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(DetectData{}, "200", "Faces detected"),
				response.New(NoDetectionData{}, "200", "No face found"),
			}),
			endpoint.WithErrors([]response.Response{missingImage, decodeFailed, internalError}),
		)
	}

	largest := func(path, summary, desc string) *endpoint.EndPoint {
		return endpoint.New(
			endpoint.POST,
			path,
			endpoint.WithTags("Detection"),
			endpoint.WithSummary(summary),
			endpoint.WithDescription(desc),
			endpoint.WithConsume(multipart),
			endpoint.WithProduce(jsonMIME),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(LargestFaceData{}, "200", "Largest face"),
				response.New(NoDetectionData{}, "200", "No face in any orientation"),
			}),
			endpoint.WithErrors([]response.Response{missingImage, decodeFailed, internalError}),
		)
	}

	return []*endpoint.EndPoint{
		detect("/get_face", "Detect faces"),
		detect("/get_face/retina", "Detect faces with the anchor-grid model only"),
		largest("/get_largest_face", "Crop the largest face",
			"Rotates the image a quarter turn at a time until a face is found. 'rotation' is the number of clockwise quarter turns applied."),
		largest("/get_aligned_face", "Crop and align the largest face",
			"Like /get_largest_face, with the crop levelled on the eye line and resized to a square."),
		endpoint.New(
			endpoint.POST,
			"/get_vec",
			endpoint.WithTags("Embedding"),
			endpoint.WithSummary("Extract a face embedding"),
			endpoint.WithDescription("Multipart fields 'input' and 'aligned' (default true). Unaligned uploads are aligned on the largest face first."),
			endpoint.WithConsume(multipart),
			endpoint.WithProduce(jsonMIME),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmbeddingData{}, "200", "512 float embedding"),
			}),
			endpoint.WithErrors([]response.Response{
				missingImage,
				decodeFailed,
				response.New(ErrorResponse{Code: "NO_FACE_DETECTED", Message: "no detections were found, please try with a better image!"}, "422", "Unprocessable Entity"),
				internalError,
			}),
		),
	}
}

func storeEndpoints() []*endpoint.EndPoint {
	similarErrors := []response.Response{
		response.New(ErrorResponse{Code: "INVALID_EMBEDDING", Message: "invalid vector dimension , input vector must be exactly 512 long!"}, "400", "Bad Request"),
		response.New(ErrorResponse{Code: "FACE_NOT_FOUND", Message: "no results were found for the given face_uuid"}, "404", "Not Found"),
		response.New(ErrorResponse{Code: "INVALID_COUNT", Message: "count must be a positive integer"}, "422", "Unprocessable Entity"),
		internalError,
	}

	return []*endpoint.EndPoint{
		endpoint.New(
			endpoint.POST,
			"/post_face_vec",
			endpoint.WithTags("Store"),
			endpoint.WithSummary("Store a face embedding"),
			endpoint.WithConsume(jsonMIME),
			endpoint.WithProduce(jsonMIME),
			endpoint.WithBody(FaceInsertBody{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(StatusData{}, "201", "Stored"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INVALID_EMBEDDING", Message: "invalid vector dimension , input vector must be exactly 512 long!"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "FACE_ALREADY_EXISTS", Message: "a face with this face_uuid already exists"}, "409", "Conflict"),
				internalError,
			}),
		),
		endpoint.New(
			endpoint.POST,
			"/get_face_by_uuid",
			endpoint.WithTags("Store"),
			endpoint.WithSummary("Get a stored face"),
			endpoint.WithConsume(jsonMIME),
			endpoint.WithProduce(jsonMIME),
			endpoint.WithBody(FaceLookupBody{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(FaceDetailData{}, "200", "Stored face"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "FACE_NOT_FOUND", Message: "no results were found for the given face_uuid"}, "404", "Not Found"),
				internalError,
			}),
		),
		endpoint.New(
			endpoint.POST,
			"/get_similar_faces_by_uuid",
			endpoint.WithTags("Similarity"),
			endpoint.WithSummary("Rank stored faces against a stored face"),
			endpoint.WithConsume(jsonMIME),
			endpoint.WithProduce(jsonMIME),
			endpoint.WithBody(SimilarByUUIDBody{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New([]SimilarFaceData{}, "200", "Matches, most similar first"),
			}),
			endpoint.WithErrors(similarErrors),
		),
		endpoint.New(
			endpoint.POST,
			"/get_similar_faces_by_embedding",
			endpoint.WithTags("Similarity"),
			endpoint.WithSummary("Rank stored faces against an embedding"),
			endpoint.WithConsume(jsonMIME),
			endpoint.WithProduce(jsonMIME),
			endpoint.WithBody(SimilarByEmbeddingBody{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New([]SimilarFaceData{}, "200", "Matches, most similar first"),
			}),
			endpoint.WithErrors(similarErrors),
		),
	}
}

func gatewayEndpoints() []*endpoint.EndPoint {
	upstream := response.New(ErrorResponse{Code: "UPSTREAM_UNAVAILABLE", Message: "An upstream service is unavailable"}, "502", "Bad Gateway")
	limited := response.New(ErrorResponse{Code: "RATE_LIMIT_EXCEEDED", Message: "Rate limit exceeded, please try again later"}, "429", "Too Many Requests")
	noFace := response.New(ErrorResponse{Code: "NO_FACE_DETECTED", Message: "no detections were found, please try with a better image!"}, "422", "Unprocessable Entity")

	return []*endpoint.EndPoint{
		endpoint.New(
			endpoint.POST,
			"/add_face",
			endpoint.WithTags("Faces"),
			endpoint.WithSummary("Register a face"),
			endpoint.WithDescription("Multipart fields 'input', 'aligned' (default false), optional 'name' and 'gender'. Returns the new face uuid."),
			endpoint.WithConsume(multipart),
			endpoint.WithProduce(jsonMIME),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AddFaceData{}, "200", "Face registered"),
			}),
			endpoint.WithErrors([]response.Response{missingImage, noFace, limited, upstream}),
		),
		endpoint.New(
			endpoint.POST,
			"/get_similar_faces_uuid",
			endpoint.WithTags("Faces"),
			endpoint.WithSummary("Find faces similar to a registered one"),
			endpoint.WithConsume(jsonMIME),
			endpoint.WithProduce(jsonMIME),
			endpoint.WithBody(SimilarByUUIDBody{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New([]SimilarFaceData{}, "200", "Matches, most similar first"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "FACE_NOT_FOUND", Message: "no results were found for the given face_uuid"}, "404", "Not Found"),
				limited,
				upstream,
			}),
		),
		endpoint.New(
			endpoint.POST,
			"/get_similar_faces_image",
			endpoint.WithTags("Faces"),
			endpoint.WithSummary("Find faces similar to an uploaded image"),
			endpoint.WithDescription("Multipart fields 'input', 'aligned' (default false) and 'count'."),
			endpoint.WithConsume(multipart),
			endpoint.WithProduce(jsonMIME),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New([]SimilarFaceData{}, "200", "Matches, most similar first"),
			}),
			endpoint.WithErrors([]response.Response{missingImage, noFace, limited, upstream}),
		),
	}
}
