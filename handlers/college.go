package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/sosika-app/sosika-backend/database/dbhelper"
)

func CreateCollege(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	id, err := dbhelper.CreateCollege(req.Name, req.Address)
	if err != nil {
		logrus.WithError(err).Error("failed to create college")
		http.Error(w, "failed to create college", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":    "College created successfully",
		"college_id": id,
	})
}

func ListColleges(w http.ResponseWriter, r *http.Request) {
	colleges, err := dbhelper.ListColleges()
	if err != nil {
		logrus.WithError(err).Error("failed to fetch colleges")
		http.Error(w, "failed to fetch colleges", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(colleges)
}
