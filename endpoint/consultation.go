package endpoint

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/pillcare/pillcare-backend/model"
	"github.com/pillcare/pillcare-backend/store"
	"github.com/pillcare/pillcare-backend/util"
)

// GetConsultationHistory godoc
// @Summary      Consultation history
// @Description  Return the user's two most recent consultations with pharmacy details
// @Tags         Consultation
// @Produce      json
// @Param        user_id query int true "User ID"
// @Success      200 {object} util.APIResponse{data=[]model.ConsultationHistoryEntry} "History retrieved"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/consultation/history [get]
func GetConsultationHistory(c *gin.Context) {
	userID, ok := parseUintQueryOrRespond(c, "user_id")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	entries, err := store.ConsultationHistory(db, userID)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve consultation history", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Consultation history retrieved", Data: entries})
}

// GetConsultationDetail godoc
// @Summary      Consultation detail
// @Description  Return one consultation by id
// @Tags         Consultation
// @Produce      json
// @Param        id path int true "Consultation ID"
// @Success      200 {object} util.APIResponse{data=model.Consultation} "Consultation retrieved"
// @Failure      404 {object} util.APIResponse "Consultation not found"
// @Router       /api/consultation/history_detail/{id} [get]
func GetConsultationDetail(c *gin.Context) {
	id, ok := parseUintParamOrRespond(c, "id")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	consultation, err := store.GetConsultationByID(db, id)
	if errors.Is(err, store.ErrNotFound) {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Consultation not found", Err: err})
		return
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve consultation", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Consultation retrieved", Data: consultation})
}

// InsertConsultation godoc
// @Summary      Create consultation
// @Description  Create a consultation, resolving or creating the pharmacy by name and address first
// @Tags         Consultation
// @Accept       json
// @Produce      json
// @Param        request body model.ConsultationRequest true "Consultation"
// @Success      200 {object} util.APIResponse "Consultation created"
// @Failure      400 {object} util.APIResponse "Missing pharmacy name or address"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/consultation/insert [post]
func InsertConsultation(c *gin.Context) {
	var req model.ConsultationRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	if req.PharmacyName == "" || req.PharmacyAddress == "" {
		util.CallUserError(c, util.APIErrorParams{Msg: "Pharmacy name and address are required", Err: fmt.Errorf("missing pharmacy name or address")})
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	id, err := store.InsertConsultation(db, req)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create consultation", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Consultation created", Data: map[string]interface{}{"id": id}})
}

// RequestConsultation godoc
// @Summary      Request consultation
// @Description  Create a consultation against an already-known pharmacy id
// @Tags         Consultation
// @Accept       json
// @Produce      json
// @Param        request body model.ConsultationRequest true "Consultation"
// @Success      200 {object} util.APIResponse "Consultation requested"
// @Failure      400 {object} util.APIResponse "Missing pharmacy id"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/consultation/request [post]
func RequestConsultation(c *gin.Context) {
	var req model.ConsultationRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	if req.PharmacyID == 0 {
		util.CallUserError(c, util.APIErrorParams{Msg: "pharmacy_id is required", Err: fmt.Errorf("missing pharmacy_id")})
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	id, err := store.RequestConsultation(db, req)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to request consultation", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Consultation requested", Data: map[string]interface{}{"id": id}})
}

// UpdateConsultation godoc
// @Summary      Update consultation
// @Description  Update status and history; only applied when the incoming status is "receipt" or "complete"
// @Tags         Consultation
// @Accept       json
// @Produce      json
// @Param        id path int true "Consultation ID"
// @Param        request body model.ConsultationRequest true "Consultation"
// @Success      200 {object} util.APIResponse "Update outcome, applied or not"
// @Failure      404 {object} util.APIResponse "Consultation not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/consultation/update/{id} [put]
func UpdateConsultation(c *gin.Context) {
	id, ok := parseUintParamOrRespond(c, "id")
	if !ok {
		return
	}
	var req model.ConsultationRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	applied, err := store.UpdateConsultation(db, id, req)
	if errors.Is(err, store.ErrNotFound) {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Consultation not found", Err: err})
		return
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update consultation", Err: err})
		return
	}

	// A disallowed status is a reported no-op, not an error.
	msg := "Consultation updated"
	if !applied {
		msg = "Consultation status does not allow update"
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: msg, Data: map[string]interface{}{"updated": applied}})
}

// DeleteConsultation godoc
// @Summary      Delete consultation
// @Description  Delete a consultation by id
// @Tags         Consultation
// @Produce      json
// @Param        id path int true "Consultation ID"
// @Success      200 {object} util.APIResponse "Consultation deleted"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/consultation/delete/{id} [delete]
func DeleteConsultation(c *gin.Context) {
	id, ok := parseUintParamOrRespond(c, "id")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	if err := store.DeleteConsultation(db, id); err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete consultation", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Consultation deleted", Data: map[string]interface{}{"id": id}})
}
