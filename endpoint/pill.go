package endpoint

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/pillcare/pillcare-backend/client"
	"github.com/pillcare/pillcare-backend/store"
	"github.com/pillcare/pillcare-backend/util"
)

// SearchPill godoc
// @Summary      Search drug information
// @Description  Search the drug-information provider by keyword
// @Tags         Pill
// @Produce      json
// @Param        search_word query string true "Search keyword"
// @Success      200 {object} util.APIResponse{data=[]client.PillInfo} "Search results"
// @Failure      400 {object} util.APIResponse "Missing search_word"
// @Failure      503 {object} util.APIResponse "Drug-information provider unavailable"
// @Router       /api/pill/search [get]
func SearchPill(c *gin.Context) {
	searchWord := c.Query("search_word")
	if searchWord == "" {
		util.CallUserError(c, util.APIErrorParams{Msg: "search_word is required", Err: fmt.Errorf("missing search_word")})
		return
	}
	if drugSearchClient == nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Drug-information provider not configured", Err: fmt.Errorf("drug search client missing")})
		return
	}

	hits, err := drugSearchClient.Search(c.Request.Context(), searchWord)
	if err != nil {
		respondProviderError(c, "Drug search failed", err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Drug search results", Data: hits})
}

// PillDetail godoc
// @Summary      Drug detail
// @Description  Return the full reference entry for a drug code, from the local pill table when present, otherwise from the provider
// @Tags         Pill
// @Produce      json
// @Param        drug_code query string true "Drug code"
// @Success      200 {object} util.APIResponse{data=client.PillInfoDetail} "Drug detail"
// @Failure      400 {object} util.APIResponse "Missing drug_code"
// @Failure      503 {object} util.APIResponse "Drug-information provider unavailable"
// @Router       /api/pill/detail [get]
func PillDetail(c *gin.Context) {
	drugCode := c.Query("drug_code")
	if drugCode == "" {
		util.CallUserError(c, util.APIErrorParams{Msg: "drug_code is required", Err: fmt.Errorf("missing drug_code")})
		return
	}

	// The local pill table is authoritative when it knows the code; the
	// provider covers everything else.
	if db, ok := getDBOrRespond(c); ok {
		pill, err := store.FindPillByCode(db, drugCode)
		if err == nil {
			util.CallSuccessOK(c, util.APISuccessParams{Msg: "Drug detail", Data: client.PillInfoDetail{
				PillInfo: client.PillInfo{
					DrugCode: pill.DrugCode,
					DrugName: pill.DrugName,
					Dosage:   pill.Dosage,
					Effect:   pill.Effect,
				},
				Caution: pill.Caution,
			}})
			return
		}
		if !errors.Is(err, store.ErrNotFound) {
			util.CallServerError(c, util.APIErrorParams{Msg: "Failed to look up drug code", Err: err})
			return
		}
	} else {
		return
	}

	if drugSearchClient == nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Drug-information provider not configured", Err: fmt.Errorf("drug search client missing")})
		return
	}
	detail, err := drugSearchClient.Detail(c.Request.Context(), drugCode)
	if err != nil {
		respondProviderError(c, "Drug detail lookup failed", err)
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Drug detail", Data: detail})
}
