package handlers

import (
	"github.com/gofiber/fiber/v2"
)

type LegalHandler struct{}

func NewLegalHandler() *LegalHandler {
	return &LegalHandler{}
}

func (h *LegalHandler) PrivacyPolicy(c *fiber.Ctx) error {
	return c.Type("html").SendString(`<!DOCTYPE html>
<html><head><title>Privacy Policy - CareLink</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<style>body{font-family:-apple-system,BlinkMacSystemFont,sans-serif;max-width:800px;margin:0 auto;padding:20px;color:#333}h1{color:#1a1a1a}h2{color:#444;margin-top:30px}</style>
</head><body>
<h1>Privacy Policy</h1>
<p>Last updated: August 2026</p>
<h2>Information We Collect</h2>
<p>We collect your email address, your name, and the professional or patient profile details you provide to operate your account.</p>
<h2>How We Use Your Information</h2>
<p>Your data is used solely to operate CareLink, authenticate your account, and connect you with the care providers you interact with.</p>
<h2>Health Information</h2>
<p>Medical records and prescriptions are visible only to you and the verified professionals involved in your care.</p>
<h2>Data Storage</h2>
<p>Your data is stored securely on encrypted servers. We do not sell your personal information to third parties.</p>
<h2>Contact</h2>
<p>For questions about this policy, contact us at privacy@carelink.health</p>
</body></html>`)
}

func (h *LegalHandler) TermsOfService(c *fiber.Ctx) error {
	return c.Type("html").SendString(`<!DOCTYPE html>
<html><head><title>Terms of Service - CareLink</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<style>body{font-family:-apple-system,BlinkMacSystemFont,sans-serif;max-width:800px;margin:0 auto;padding:20px;color:#333}h1{color:#1a1a1a}h2{color:#444;margin-top:30px}</style>
</head><body>
<h1>Terms of Service</h1>
<p>Last updated: August 2026</p>
<h2>Acceptance</h2>
<p>By using CareLink, you agree to these terms.</p>
<h2>Professional Accounts</h2>
<p>Doctor, nurse and pharmacist accounts require verification by an administrator before clinical features become available. Providing false licensing information leads to account termination.</p>
<h2>Not Medical Advice</h2>
<p>CareLink is a coordination tool. It does not replace professional medical judgement or emergency services.</p>
<h2>Termination</h2>
<p>We may suspend or deactivate accounts that violate these terms.</p>
<h2>Contact</h2>
<p>For questions, contact us at support@carelink.health</p>
</body></html>`)
}
