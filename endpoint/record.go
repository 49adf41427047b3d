package endpoint

import (
	"errors"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/pillcare/pillcare-backend/detect"
	"github.com/pillcare/pillcare-backend/middleware"
	"github.com/pillcare/pillcare-backend/model"
	"github.com/pillcare/pillcare-backend/store"
	"github.com/pillcare/pillcare-backend/util"
	"gorm.io/gorm"
)

const noDetectionMessage = "No objects detected"

// RecordCreateResponse is the upload result. ClassName counts every raw
// detection label, including labels that matched no pill row and therefore
// persisted nothing; the persisted detail rows cover only matched labels.
type RecordCreateResponse struct {
	ID        uint           `json:"id" example:"1"`
	ClassName map[string]int `json:"class_name"`
	Message   string         `json:"message,omitempty" example:"No objects detected"`
}

func readUploadedImage(c *gin.Context) (filename string, data []byte, ok bool) {
	fileHeader, err := c.FormFile("original_image")
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "No image provided", Err: err})
		return "", nil, false
	}
	if fileHeader.Filename == "" {
		util.CallUserError(c, util.APIErrorParams{Msg: "Image has no filename", Err: fmt.Errorf("empty filename")})
		return "", nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Failed to open uploaded image", Err: err})
		return "", nil, false
	}
	defer file.Close()

	data, err = io.ReadAll(file)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to read uploaded image", Err: err})
		return "", nil, false
	}
	if len(data) == 0 {
		util.CallUserError(c, util.APIErrorParams{Msg: "Uploaded image is empty", Err: fmt.Errorf("zero-length image")})
		return "", nil, false
	}
	return fileHeader.Filename, data, true
}

// resolvePillID maps a detection label to a pill id by exact drug-name
// match, consulting the label cache first. ErrNotFound means the label has
// no reference entry.
func resolvePillID(db *gorm.DB, label string) (uint, error) {
	if id, ok := util.PillCacheGet(label); ok {
		return id, nil
	}
	pill, err := store.FindPillByName(db, label)
	if err != nil {
		return 0, err
	}
	util.PillCacheSet(label, pill.ID)
	return pill.ID, nil
}

// matchDetections resolves each detection against the pill table. Unmatched
// labels are dropped with an audit event; they still count in the response
// grouping. Only genuine persistence failures abort.
func matchDetections(db *gorm.DB, kakaoID string, recordID uint, detections []detect.Detection) ([]model.RecordDetail, error) {
	details := make([]model.RecordDetail, 0, len(detections))
	for _, d := range detections {
		pillID, err := resolvePillID(db, d.Label)
		if errors.Is(err, store.ErrNotFound) {
			util.LogDetectionDropped(kakaoID, d.Label, recordID)
			continue
		}
		if err != nil {
			return nil, err
		}
		details = append(details, model.RecordDetail{
			RecordID:  recordID,
			PillID:    pillID,
			PillCount: 1,
			BoxX1:     d.Box.X1,
			BoxY1:     d.Box.Y1,
			BoxX2:     d.Box.X2,
			BoxY2:     d.Box.Y2,
		})
	}
	return details, nil
}

// CreateRecord godoc
// @Summary      Upload a pill photo
// @Description  Store the image, run detection, and persist one detail row per matched detection
// @Tags         Record
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        original_image formData file true "Pill photo"
// @Success      200 {object} util.APIResponse{data=RecordCreateResponse} "Record created"
// @Failure      400 {object} util.APIResponse "Missing or empty image"
// @Failure      401 {object} util.APIResponse "Missing or invalid token"
// @Failure      500 {object} util.APIResponse "Storage or database failure"
// @Failure      503 {object} util.APIResponse "Inference service unavailable"
// @Router       /api/record/insert [post]
func CreateRecord(c *gin.Context) {
	user, ok := getCurrentUserOrRespond(c)
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	detector := middleware.GetDetector(c)
	imageStore := middleware.GetImageStore(c)
	if detector == nil || imageStore == nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Record workflow not configured", Err: fmt.Errorf("detector or image store missing")})
		return
	}

	filename, imageBytes, ok := readUploadedImage(c)
	if !ok {
		return
	}

	// Failures from here until the record insert leave no DB rows behind.
	// The stored file is not removed on later DB failure; uploads may leak
	// on that path.
	imagePath, err := imageStore.Save(filename, imageBytes)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to store image", Err: err})
		return
	}

	detections, err := detector.Detect(c.Request.Context(), imageBytes)
	if err != nil {
		util.CallServiceUnavailable(c, util.APIErrorParams{Msg: "Image inference failed", Err: err})
		return
	}

	// Group raw labels before pill matching; the response reflects what the
	// model saw, the DB reflects what the reference table knows.
	grouped := detect.GroupLabels(detections)
	message := ""
	if len(detections) == 0 {
		message = noDetectionMessage
	}

	recordID, err := store.CreateRecord(db, user.ID, imagePath)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create record", Err: err})
		return
	}

	details, err := matchDetections(db, user.KakaoID, recordID, detections)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to resolve detections", Err: err})
		return
	}
	if err := store.InsertRecordDetails(db, details); err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to save record details", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Record created",
		Data: RecordCreateResponse{
			ID:        recordID,
			ClassName: grouped,
			Message:   message,
		},
	})
}

// ReadRecords godoc
// @Summary      List records
// @Description  Return all of the user's records with joined pill details, newest first
// @Tags         Record
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} util.APIResponse{data=[]model.RecordRead} "Records retrieved"
// @Failure      401 {object} util.APIResponse "Missing or invalid token"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/record/read [get]
func ReadRecords(c *gin.Context) {
	user, ok := getCurrentUserOrRespond(c)
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	records, err := store.RecordsWithDetails(db, user.ID)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to read records", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Records retrieved", Data: records})
}

// DeleteRecord godoc
// @Summary      Delete record
// @Description  Delete a record and its detail rows
// @Tags         Record
// @Produce      json
// @Security     BearerAuth
// @Param        record_id query int true "Record ID"
// @Success      200 {object} util.APIResponse "Record deleted"
// @Failure      404 {object} util.APIResponse "Record not found"
// @Router       /api/record/delete [delete]
func DeleteRecord(c *gin.Context) {
	if _, ok := getCurrentUserOrRespond(c); !ok {
		return
	}
	recordID, ok := parseUintQueryOrRespond(c, "record_id")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	deleted, err := store.DeleteRecord(db, recordID)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete record", Err: err})
		return
	}
	if !deleted {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Record not found", Err: fmt.Errorf("record %d not found", recordID)})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: fmt.Sprintf("Record id %d deleted successfully", recordID), Data: map[string]interface{}{"record_id": recordID}})
}

// DeleteRecordPill godoc
// @Summary      Delete one pill from a record
// @Description  Delete the detail rows of one pill within a record
// @Tags         Record
// @Produce      json
// @Security     BearerAuth
// @Param        record_id query int true "Record ID"
// @Param        pill_id query int true "Pill ID"
// @Success      200 {object} util.APIResponse "Pill removed from record"
// @Failure      404 {object} util.APIResponse "No matching detail rows"
// @Router       /api/record/pill_delete [delete]
func DeleteRecordPill(c *gin.Context) {
	if _, ok := getCurrentUserOrRespond(c); !ok {
		return
	}
	recordID, ok := parseUintQueryOrRespond(c, "record_id")
	if !ok {
		return
	}
	pillID, ok := parseUintQueryOrRespond(c, "pill_id")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	deleted, err := store.DeleteRecordPill(db, recordID, pillID)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete pill from record", Err: err})
		return
	}
	if !deleted {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Pill not found in record", Err: fmt.Errorf("pill %d not found in record %d", pillID, recordID)})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: fmt.Sprintf("Pill id %d deleted successfully", pillID), Data: map[string]interface{}{"record_id": recordID, "pill_id": pillID}})
}
