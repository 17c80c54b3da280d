package extraction

// SystemPrompt pins the assistant to JSON-only Thai parcel analysis.
const SystemPrompt = "คุณเป็นผู้เชี่ยวชาญด้านข้อมูลพัสดุ ตอบกลับเป็น JSON เท่านั้น"

// BuildParcelPrompt returns the extraction prompt for a Thai parcel label
// transcript. The four keys it asks for are the response contract's field
// names, so the model output maps onto RawFields directly.
func BuildParcelPrompt(ocrText string) string {
	return `คุณเป็นผู้เชี่ยวชาญในการวิเคราะห์ข้อมูลพัสดุไทย จากข้อความที่สกัดได้จาก OCR กรุณาวิเคราะห์และสกัดข้อมูลต่อไปนี้ในรูปแบบ JSON:

1. **ชื่อผู้รับ** (recipient_name)
2. **เลขห้อง** (room_number)
3. **บริษัทขนส่ง** (shipping_company)
4. **รหัสพัสดุ** (tracking_number)

**ข้อความจาก OCR:**
` + ocrText + `

**ตอบกลับเฉพาะ JSON เท่านั้น ห้ามมีคำอธิบายอื่น**`
}
